// Package app assembles the oracle node's command-line interface.
package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/oraclegrid/node/cli/console"
	"github.com/oraclegrid/node/cli/server"
	"github.com/oraclegrid/node/cli/wallet"
	"github.com/oraclegrid/node/pkg/config"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "oracle-node\nVersion: %s\nGoVersion: %s\n",
		config.Version, runtime.Version())
}

// New builds the top-level cli.App with every command group registered.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "oracle-node"
	ctl.Version = config.Version
	ctl.Usage = "designated oracle node for the chain's Oracle contract"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, server.NewCommands()...)
	ctl.Commands = append(ctl.Commands, wallet.NewCommands()...)
	ctl.Commands = append(ctl.Commands, console.NewCommands()...)
	return ctl
}
