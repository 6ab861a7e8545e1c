package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/linkcheck/cmd/linkcheck/commands"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("linkcheck"),
		kong.Description("Validate hyperlinks and asset references in a generated static site."),
		kong.UsageOnError(),
		kong.Vars{"version": commands.Version},
	)

	if err := ctx.Run(&commands.Global{}); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
