package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
)

// confirm asks question on errOut and reads a y/N answer from cfg.Stdin.
// --yes skips the prompt. No input counts as no.
func confirm(cfg *config.Config, errOut io.Writer, question string) bool {
	if cfg.Yes {
		return true
	}
	if cfg.Stdin == nil {
		return false
	}

	fmt.Fprintf(errOut, "%s [y/N] ", question)
	line, err := bufio.NewReader(cfg.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(errOut)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// cancelled reports a declined confirmation.
func cancelled(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "cancelled")
	}
	return exitcode.Success
}

// status prints a transient progress line unless quiet.
func status(cfg *config.Config, errOut io.Writer, msg string) {
	if !cfg.Quiet {
		fmt.Fprintln(errOut, msg)
	}
}
