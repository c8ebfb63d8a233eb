package config

import (
	"time"

	"github.com/oraclegrid/node/pkg/services/oracle/taskstore"
)

// ApplicationConfiguration is the node-local half of the config file: how
// this particular oracle node talks to the chain and to its peers.
type ApplicationConfiguration struct {
	// LogLevel is one of zapcore's level names ("debug", "info", "warn",
	// "error"); empty defaults to "info".
	LogLevel string `yaml:"LogLevel"`
	// LogPath, if set, additionally writes logs to this file path.
	LogPath string `yaml:"LogPath"`

	// RPCEndpoint is the chain node's JSON-RPC address this oracle reads
	// pending requests from and submits response transactions to.
	RPCEndpoint string `yaml:"RPCEndpoint"`
	// RPCTimeout bounds every individual call to RPCEndpoint.
	RPCTimeout time.Duration `yaml:"RPCTimeout"`

	// UnlockWallet identifies a wallet file. The start command does not
	// read this field; it unlocks the wallet named by Oracle.UnlockWallet.
	UnlockWallet Wallet `yaml:"UnlockWallet"`

	Oracle     OracleConfiguration `yaml:"Oracle"`
	Pprof      BasicService        `yaml:"Pprof"`
	Prometheus BasicService        `yaml:"Prometheus"`
	// StatusFeed exposes the task lifecycle websocket feed an operator
	// console can subscribe to.
	StatusFeed BasicService     `yaml:"StatusFeed"`
	TaskStore  taskstore.Config `yaml:"TaskStore"`
}
