package oracle

import (
	"context"

	"go.uber.org/zap"

	"github.com/oraclegrid/node/pkg/chain"
)

// processRequest runs the full fetch-filter-build-sign pipeline for one pending
// request: fetch, filter, build both transactions, sign locally with
// every configured key that is a member of the current designated set,
// record our own signatures, and fan them out. It is safe to call
// repeatedly for the same request; re-processing simply re-signs and
// re-gossips.
func (s *Service) processRequest(ctx context.Context, req *chain.Request) {
	code, body := s.protocols.process(ctx, req.URL)
	var result []byte
	if code == chain.Success {
		filtered, err := filterBody(req.Filter, body)
		if err != nil {
			code, result = chain.ErrorCode, nil
		} else {
			code, result = chain.Success, filtered
		}
	}

	resp := chain.Response{ID: req.ID, Code: code, Result: result}

	tx, err := buildResponseTx(ctx, s.ledger, s.cfg.ChainParams, req, resp)
	if err != nil {
		s.log.Debug("oracle: building response tx failed, will retry next poll",
			zap.Uint64("id", req.ID), zap.Error(err))
		return
	}
	backupTx, err := buildBackupTx(ctx, s.ledger, s.cfg.ChainParams, req)
	if err != nil {
		s.log.Debug("oracle: building backup tx failed, will retry next poll",
			zap.Uint64("id", req.ID), zap.Error(err))
		return
	}

	height, err := s.ledger.BlockHeight(ctx)
	if err != nil {
		return
	}
	nodes, err := s.ledger.DesignatedOracles(ctx, height+1)
	if err != nil {
		return
	}
	localKeys := s.localKeys(nodes.Nodes)
	if len(localKeys) == 0 {
		return
	}

	txHash := tx.SigningHash()
	backupHash := backupTx.SigningHash()

	for _, priv := range localKeys {
		sig, err := priv.Sign(txHash[:])
		if err != nil {
			continue
		}
		backupSig, err := priv.Sign(backupHash[:])
		if err != nil {
			continue
		}

		if err := s.AddResponseTxSign(ctx, req.ID, priv.PublicKey(), sig, tx, backupTx, backupSig); err != nil {
			s.log.Debug("oracle: recording own signature failed", zap.Uint64("id", req.ID), zap.Error(err))
			continue
		}
		if s.cfg.Broadcaster != nil {
			s.cfg.Broadcaster.SendResponse(priv, req.ID, sig)
		}
	}
}
