// Package console implements the "console" command: an interactive,
// readline-driven client that connects to a running node's status feed
// and prints task lifecycle events as they arrive.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/gorilla/websocket"
	shellquote "github.com/kballard/go-shellquote"
	"github.com/urfave/cli"

	"github.com/oraclegrid/node/pkg/services/oracle/statusfeed"
)

const dialTimeout = 5 * time.Second

// NewCommands returns the "console" command.
func NewCommands() []cli.Command {
	return []cli.Command{
		{
			Name:      "console",
			Usage:     "watch a running node's task status feed",
			ArgsUsage: "<ws-url>",
			Action:    runConsole,
		},
	}
}

func runConsole(ctx *cli.Context) error {
	url := ctx.Args().First()
	if url == "" {
		return cli.NewExitError(fmt.Errorf("console: ws-url argument is required, e.g. ws://127.0.0.1:10334"), 1)
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return cli.NewExitError(fmt.Errorf("console: connecting to %s: %w", url, err), 1)
	}
	defer conn.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "oracle> ",
		HistoryFile: "",
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer rl.Close()

	events := make(chan statusfeed.Event, 64)
	go readEvents(conn, events)

	fmt.Fprintln(ctx.App.Writer, "connected, type 'help' for commands, ctrl-d to exit")
	go func() {
		for evt := range events {
			printEvent(rl.Stdout(), evt)
		}
		fmt.Fprintln(rl.Stdout(), "console: connection closed")
	}()
	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}
		args, err := shellquote.Split(strings.TrimSpace(line))
		if err != nil || len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Fprintln(rl.Stdout(), "commands: help, quit")
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(rl.Stdout(), "unknown command %q\n", args[0])
		}
	}
}

func readEvents(conn *websocket.Conn, out chan<- statusfeed.Event) {
	defer close(out)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var evt statusfeed.Event
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}
		out <- evt
	}
}

func printEvent(w io.Writer, evt statusfeed.Event) {
	fmt.Fprintf(w, "[%s] %s request=%d %s\n",
		evt.Time.Format(time.RFC3339), evt.Type, evt.RequestID, evt.Detail)
}
