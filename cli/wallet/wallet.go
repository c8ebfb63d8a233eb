// Package wallet implements the "wallet" command group: creating the
// on-disk wallet file that holds an oracle node's signing keys.
package wallet

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/oraclegrid/node/cli/input"
	"github.com/oraclegrid/node/pkg/wallet"
)

// NewCommands returns the "wallet" command and its subcommands.
func NewCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "wallet",
			Usage: "manage the oracle node's signing key wallet",
			Subcommands: []cli.Command{
				{
					Name:      "init",
					Usage:     "create an empty wallet file",
					ArgsUsage: "<path>",
					Action:    initWallet,
				},
				{
					Name:      "create",
					Usage:     "generate a new signing key and add it to a wallet",
					ArgsUsage: "<path>",
					Flags: []cli.Flag{
						cli.StringFlag{Name: "label, l", Usage: "account label"},
					},
					Action: createAccount,
				},
			},
		},
	}
}

func initWallet(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return cli.NewExitError(fmt.Errorf("wallet: path argument is required"), 1)
	}
	if _, err := os.Stat(path); err == nil {
		return cli.NewExitError(fmt.Errorf("wallet: %s already exists", path), 1)
	}

	w := wallet.NewWallet(path)
	if err := w.Save(); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "wallet created: %s\n", path)
	return nil
}

func createAccount(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return cli.NewExitError(fmt.Errorf("wallet: path argument is required"), 1)
	}

	w, err := wallet.NewWalletFromFile(path)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	pass, err := input.ReadPassword(ctx.App.Writer, "Enter passphrase for the new account: ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	confirm, err := input.ReadPassword(ctx.App.Writer, "Confirm passphrase: ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if pass != confirm {
		return cli.NewExitError(fmt.Errorf("wallet: passphrases do not match"), 1)
	}

	acc, err := w.CreateAccount(ctx.String("label"), pass)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := w.Save(); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(ctx.App.Writer, "created account %q, public key %x\n", acc.Label, acc.PublicKey)
	return nil
}
