// Package main is the orgclaw CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jholhewres/orgclaw/cmd/orgclaw/commands"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/app"
)

// version is injected at build time via ldflags.
var version = "dev"

func main() {
	rootCmd := commands.NewRootCmd(version)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, app.ErrTransportLost) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
