// Package metrics implements the node's two auxiliary HTTP services:
// pprof profiling and Prometheus scraping. Both share the same
// enable/bind-addresses config shape and start/stop lifecycle.
package metrics

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/oraclegrid/node/pkg/config"
)

// Service runs one or more identically configured HTTP listeners for a
// single auxiliary service (pprof or Prometheus).
type Service struct {
	servers     []*http.Server
	config      config.BasicService
	log         *zap.Logger
	serviceType string
}

// NewService wraps srvs, one already-configured *http.Server per bind
// address, as a named auxiliary service.
func NewService(serviceType string, srvs []*http.Server, cfg config.BasicService, log *zap.Logger) *Service {
	return &Service{
		servers:     srvs,
		config:      cfg,
		log:         log,
		serviceType: serviceType,
	}
}

// Start runs every configured listener in its own goroutine. It returns
// immediately; listener errors are logged, not returned, since a failed
// auxiliary service must never take the oracle pipeline down with it.
func (ms *Service) Start() {
	if !ms.config.Enabled {
		ms.log.Info("service hasn't started since it's disabled", zap.String("service", ms.serviceType))
		return
	}
	for _, srv := range ms.servers {
		srv := srv
		ms.log.Info("service is running", zap.String("service", ms.serviceType), zap.String("endpoint", srv.Addr))
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				ms.log.Warn("service couldn't start on configured port",
					zap.String("service", ms.serviceType), zap.String("endpoint", srv.Addr), zap.Error(err))
			}
		}()
	}
}

// ShutDown gracefully stops every listener.
func (ms *Service) ShutDown() {
	if !ms.config.Enabled {
		return
	}
	for _, srv := range ms.servers {
		ms.log.Info("shutting down service", zap.String("service", ms.serviceType), zap.String("endpoint", srv.Addr))
		if err := srv.Shutdown(context.Background()); err != nil {
			ms.log.Error("can't shut service down", zap.String("service", ms.serviceType), zap.Error(err))
		}
	}
}
