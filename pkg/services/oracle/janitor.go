package oracle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/services/oracle/statusfeed"
)

// runJanitor is the timer/janitor: every RefreshInterval it
// re-gossips backup signatures for tasks stuck in the resend window,
// evicts pending tasks older than MaxTaskTimeout, expires finished-cache
// entries older than the finished-cache TTL, and runs the liveness
// self-check. Like the poller, this service polls chain height each
// tick rather than reacting to a block-persisted event, since the chain
// node exposes no such notification channel to an external RPC client.
func (s *Service) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.janitorTick(ctx)
		}
	}
}

func (s *Service) janitorTick(ctx context.Context) {
	s.resendAndEvict(ctx)
	s.expireFinished()
	s.checkLiveness(ctx)
}

// resendAndEvict implements the janitor's per-task half: within
// (RefreshInterval, 2*RefreshInterval) since creation, re-gossip every
// locally owned key's backup signature; beyond MaxTaskTimeout, evict.
func (s *Service) resendAndEvict(ctx context.Context) {
	now := time.Now()

	type resend struct {
		priv *keys.PrivateKey
		id   uint64
		sig  []byte
	}
	var toResend []resend

	var evicted []uint64

	s.mu.Lock()
	for id, task := range s.pending {
		age := now.Sub(task.CreatedAt)
		switch {
		case s.cfg.MaxTaskTimeout > 0 && age > s.cfg.MaxTaskTimeout:
			delete(s.pending, id)
			evicted = append(evicted, id)
		case age > s.cfg.RefreshInterval && age < 2*s.cfg.RefreshInterval:
			for _, priv := range s.cfg.Keys {
				if sig, ok := task.BackupSigns[priv.PublicKey().String()]; ok && sig.verified {
					toResend = append(toResend, resend{priv: priv, id: id, sig: sig.sig})
				}
			}
		}
	}
	s.mu.Unlock()

	for _, id := range evicted {
		if err := s.store.DeletePending(id); err != nil {
			s.log.Warn("oracle: dropping durable snapshot for evicted task failed", zap.Uint64("id", id), zap.Error(err))
		}
		s.publishEvent(statusfeed.EventTaskEvicted, id, "max task timeout exceeded")
	}

	if s.cfg.Broadcaster == nil {
		return
	}
	for _, r := range toResend {
		s.cfg.Broadcaster.SendResponse(r.priv, r.id, r.sig)
	}
}

// expireFinished drops finished_cache entries older than the configured
// TTL (3 days by default).
func (s *Service) expireFinished() {
	now := time.Now()
	var expired []uint64

	s.mu.Lock()
	for id, at := range s.finished {
		if now.Sub(at) > s.cfg.FinishedCacheTTL {
			delete(s.finished, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		if err := s.store.DeleteFinished(id); err != nil {
			s.log.Warn("oracle: dropping durable finished entry failed", zap.Uint64("id", id), zap.Error(err))
		}
	}
}

// checkLiveness stops the service if the local wallet no longer holds
// any key that is a designated oracle for the next block.
func (s *Service) checkLiveness(ctx context.Context) {
	height, err := s.ledger.BlockHeight(ctx)
	if err != nil {
		return
	}
	live, err := s.isDesignatedOracle(ctx, height+1)
	if err != nil {
		return
	}
	if !live {
		s.log.Info("oracle: no configured key is a designated oracle for the next block, stopping")
		go s.Stop()
	}
}
