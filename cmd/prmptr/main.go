// Package main provides the entry point for the prmptr CLI.
package main

import (
	"context"
	"os"

	"github.com/greg-randall/prmptr/internal/cli"
)

// Build information set via ldflags at build time.
//
//nolint:gochecknoglobals // Populated by -ldflags "-X main.version=..."
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	cli.CloseLogFile()
	os.Exit(cli.ExitCodeForError(err))
}
