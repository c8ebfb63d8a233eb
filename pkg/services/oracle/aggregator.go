package oracle

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/services/oracle/statusfeed"
	"github.com/oraclegrid/node/pkg/services/oracle/taskstore"
)

// AddResponseTxSign is the aggregator's single public operation.
// tx, backupTx and backupSig are non-nil only when the caller (the local
// fetch-filter-build pipeline) just built the transactions itself; the
// inbound endpoint calls this with only pub and sig set.
func (s *Service) AddResponseTxSign(ctx context.Context, requestID uint64, pub *keys.PublicKey, sig []byte, tx, backupTx *chain.Transaction, backupSig []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.finished[requestID]; done {
		return errAlreadyFinished
	}

	task, ok := s.pending[requestID]
	if !ok {
		req, err := s.ledger.RequestByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return errRequestNotFound
		}
		task = newOracleTask(req, time.Now())
		s.pending[requestID] = task
		s.publishEvent(statusfeed.EventTaskStarted, requestID, "")
	}

	if tx != nil {
		task.installTx(tx)
	}
	if backupTx != nil {
		task.installBackupTx(backupTx)
		if task.Tx != nil {
			h := backupTx.SigningHash()
			task.BackupSigns[pub.String()] = &oracleSignature{
				pub:      pub,
				sig:      backupSig,
				verified: pub.Verify(backupSig, h[:]),
			}
		}
	}

	if task.Tx == nil {
		// We are only a signature collector at this point; the local
		// tx/backupTx installation above will prune whichever map this
		// signature turns out not to belong to.
		task.addSpeculative(pub, sig)
		s.persistPending(task)
		return nil
	}

	if _, err := task.addVerified(pub, sig); err != nil {
		return err
	}
	s.persistPending(task)
	s.publishEvent(statusfeed.EventTaskSigned, requestID, pub.String())

	nodes, err := s.currentOracleNodes(ctx)
	if err != nil {
		// Chain read failure at finalize time is not this call's
		// concern; the signature was still recorded and threshold will
		// be re-checked on the next mutation.
		return nil
	}

	finalTx, ready := task.finalize(nodes)
	if !ready {
		return nil
	}
	if err := s.ledger.SubmitTransaction(ctx, finalTx); err != nil {
		s.log.Warn("oracle: submitting finalized transaction failed",
			zap.Uint64("id", requestID), zap.Error(err))
	}
	delete(s.pending, requestID)
	finishedAt := time.Now()
	s.finished[requestID] = finishedAt
	if err := s.store.SaveFinished(requestID, finishedAt); err != nil {
		s.log.Warn("oracle: persisting finished cache entry failed", zap.Uint64("id", requestID), zap.Error(err))
	}
	if err := s.store.DeletePending(requestID); err != nil {
		s.log.Warn("oracle: dropping durable pending snapshot failed", zap.Uint64("id", requestID), zap.Error(err))
	}
	s.publishEvent(statusfeed.EventTaskFinished, requestID, "")
	return nil
}

// persistPending durably snapshots task's current signature state. It is
// best-effort: a failure here only costs the speed of the next restart's
// re-signing, never correctness.
func (s *Service) persistPending(task *OracleTask) {
	snap := taskstore.PendingSnapshot{
		RequestID:   task.Request.ID,
		CreatedAt:   task.CreatedAt,
		TxBuilt:     task.Tx != nil,
		Signs:       encodeSigs(task.Signs),
		BackupSigns: encodeSigs(task.BackupSigns),
	}
	if err := s.store.SavePending(snap); err != nil {
		s.log.Warn("oracle: persisting pending snapshot failed", zap.Uint64("id", task.Request.ID), zap.Error(err))
	}
}

func encodeSigs(sigs map[string]*oracleSignature) map[string]string {
	if len(sigs) == 0 {
		return nil
	}
	out := make(map[string]string, len(sigs))
	for _, v := range sigs {
		out[hex.EncodeToString(v.pub.Bytes())] = base64.StdEncoding.EncodeToString(v.sig)
	}
	return out
}

func (s *Service) currentOracleNodes(ctx context.Context) (keys.PublicKeys, error) {
	height, err := s.ledger.BlockHeight(ctx)
	if err != nil {
		return nil, err
	}
	set, err := s.ledger.DesignatedOracles(ctx, height+1)
	if err != nil {
		return nil, err
	}
	return set.Nodes, nil
}
