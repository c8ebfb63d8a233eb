package oracle

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// runPoller is the request poller: every PollInterval it lists
// every pending on-chain request and drives the pipeline for any that
// are not already finished and do not yet have a primary transaction.
// It is a single cooperative loop that stops promptly on cancellation.
func (s *Service) runPoller(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// pollOnce lists every pending on-chain request and drives the pipeline
// for the ones that still need it, bounded by MaxConcurrentRequests so a
// backlog of requests cannot spawn an unbounded number of goroutines in
// one tick. The rest wait for the following tick.
func (s *Service) pollOnce(ctx context.Context) {
	reqs, err := s.ledger.PendingRequests(ctx)
	if err != nil {
		s.log.Debug("oracle: listing pending requests failed", zap.Error(err))
		return
	}

	sem := make(chan struct{}, s.cfg.MaxConcurrentRequests)
	var wg sync.WaitGroup
	for id, req := range reqs {
		if ctx.Err() != nil {
			break
		}
		if !s.needsProcessing(id) {
			continue
		}

		req := req
		select {
		case sem <- struct{}{}:
		default:
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			s.processRequest(ctx, req)
		}()
	}
	wg.Wait()
}

// needsProcessing reports whether request id is not already finished and
// has no primary transaction built yet.
func (s *Service) needsProcessing(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.finished[id]; done {
		return false
	}
	task, ok := s.pending[id]
	return !ok || task.Tx == nil
}
