// Package server implements the "start" command: it wires the loaded
// config into a running oracle node — chain ledger, wallet, signature
// endpoint, broadcaster, and the pipeline service itself — and blocks
// until asked to stop.
package server

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/oraclegrid/node/cli/input"
	"github.com/oraclegrid/node/pkg/chain"
	"github.com/oraclegrid/node/pkg/config"
	"github.com/oraclegrid/node/pkg/crypto/keys"
	"github.com/oraclegrid/node/pkg/services/metrics"
	"github.com/oraclegrid/node/pkg/services/oracle"
	"github.com/oraclegrid/node/pkg/services/oracle/broadcaster"
	"github.com/oraclegrid/node/pkg/services/oracle/statusfeed"
	"github.com/oraclegrid/node/pkg/services/oracle/taskstore"
	"github.com/oraclegrid/node/pkg/util"
	"github.com/oraclegrid/node/pkg/wallet"
)

// NewCommands returns the "start" command.
func NewCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "start",
			Usage:     "start the oracle node",
			ArgsUsage: "",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "config-path", Value: "./config/oracle.yml", Usage: "path to the config file"},
				cli.BoolFlag{Name: "debug, d", Usage: "enable debug logging regardless of LogLevel"},
			},
			Action: startServer,
		},
	}
}

func startServer(ctx *cli.Context) error {
	cfg, err := config.Load(ctx.String("config-path"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	appCfg := cfg.ApplicationConfiguration

	log, _, err := config.HandleLoggingParams(ctx.Bool("debug"), appCfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer log.Sync() //nolint:errcheck

	oracleKeys, err := unlockOracleKeys(ctx, appCfg.Oracle.UnlockWallet, log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	oracleContract, err := util.Uint160DecodeStringBE(appCfg.Oracle.OracleContract)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("start: OracleContract: %w", err), 1)
	}
	responseScript, err := hex.DecodeString(appCfg.Oracle.ResponseScript)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("start: ResponseScript: %w", err), 1)
	}

	ledger := chain.NewRPCLedger(appCfg.RPCEndpoint, appCfg.RPCTimeout)

	store, err := taskstore.New(appCfg.TaskStore)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	bc := broadcaster.New(log, appCfg.Oracle.Nodes, appCfg.Oracle.NodeTimeout)

	var feed *statusfeed.Hub
	if appCfg.StatusFeed.Enabled {
		feed = statusfeed.NewHub(log)
	}

	svc, err := oracle.NewService(oracle.Config{
		Log:    log,
		Ledger: ledger,
		Keys:   oracleKeys,
		ChainParams: oracle.ChainParams{
			OracleContract: oracleContract,
			ResponseScript: responseScript,
		},
		Broadcaster:           bc,
		TaskStore:             store,
		StatusFeed:            feed,
		MaxTaskTimeout:        appCfg.Oracle.ResponseTimeout,
		FinishedCacheTTL:      appCfg.Oracle.FinishedCacheTTL,
		RefreshInterval:       appCfg.Oracle.RefreshInterval,
		PollInterval:          appCfg.Oracle.PollInterval,
		AllowPrivateHost:      appCfg.Oracle.AllowPrivateHost,
		AllowedContentTypes:   appCfg.Oracle.AllowedContentTypes,
		HTTPSTimeout:          appCfg.Oracle.RequestTimeout,
		MaxConcurrentRequests: appCfg.Oracle.MaxConcurrentRequests,
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	svc.Start(rootCtx)

	var endpointSrv *http.Server
	if appCfg.Oracle.ListenAddress != "" {
		endpointSrv = &http.Server{Addr: appCfg.Oracle.ListenAddress, Handler: svc.Handler()}
		go func() {
			log.Info("oracle: signature endpoint listening", zap.String("address", appCfg.Oracle.ListenAddress))
			if err := endpointSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("oracle: signature endpoint stopped", zap.Error(err))
			}
		}()
	}

	pprofSvc := metrics.NewPprofService(appCfg.Pprof, log)
	promSvc := metrics.NewPrometheusService(appCfg.Prometheus, log)
	pprofSvc.Start()
	promSvc.Start()

	var feedSrv *http.Server
	if feed != nil && len(appCfg.StatusFeed.Addresses) > 0 {
		addr := appCfg.StatusFeed.Addresses[0]
		feedSrv = &http.Server{Addr: addr, Handler: feed.Handler()}
		go func() {
			log.Info("oracle: status feed listening", zap.String("address", addr))
			if err := feedSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("oracle: status feed stopped", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("oracle: shutting down")
	cancel()
	svc.Stop()
	pprofSvc.ShutDown()
	promSvc.ShutDown()
	if endpointSrv != nil {
		_ = endpointSrv.Shutdown(context.Background())
	}
	if feedSrv != nil {
		_ = feedSrv.Shutdown(context.Background())
	}
	if feed != nil {
		feed.Close()
	}
	return nil
}

func unlockOracleKeys(ctx *cli.Context, wc config.Wallet, log *zap.Logger) ([]*keys.PrivateKey, error) {
	if wc.Path == "" {
		return nil, fmt.Errorf("start: ApplicationConfiguration.Oracle.UnlockWallet.Path is required")
	}
	w, err := wallet.NewWalletFromFile(wc.Path)
	if err != nil {
		return nil, fmt.Errorf("start: opening wallet: %w", err)
	}

	pass := wc.Password
	if pass == "" {
		pass, err = input.ReadPassword(ctx.App.Writer, fmt.Sprintf("Enter passphrase for %s: ", wc.Path))
		if err != nil {
			return nil, err
		}
	}

	accounts := w.DecryptAll(pass)
	if len(accounts) == 0 {
		return nil, fmt.Errorf("start: no wallet account could be unlocked with the given passphrase")
	}
	log.Info("oracle: unlocked wallet accounts", zap.Int("count", len(accounts)))

	out := make([]*keys.PrivateKey, len(accounts))
	for i, acc := range accounts {
		out[i] = acc.PrivateKey()
	}
	return out, nil
}
