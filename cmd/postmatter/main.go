// Package main is the entry point for the postmatter CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/postmatter/cmd/postmatter/commands"
	"github.com/thoreinstein/postmatter/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	var exitErr *errors.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Silent() {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "%s\n", exitErr.Suggestion)
	}
	os.Exit(errors.ExitCode(err))
}
