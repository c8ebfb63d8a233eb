// Package input reads interactive terminal input: passwords with echo
// disabled, and plain lines from stdin.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ReadLine reads a line from stdin without its trailing newline.
func ReadLine(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	buf := bufio.NewReader(os.Stdin)
	line, err := buf.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

// ReadPassword reads a password from the controlling terminal with echo
// disabled, so it never lands in shell history or a terminal scrollback.
func ReadPassword(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("input: reading password: %w", err)
	}
	fmt.Fprintln(w)
	return string(pass), nil
}
