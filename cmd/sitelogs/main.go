package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DeBrosOfficial/sitelogs/pkg/cli"
	"github.com/DeBrosOfficial/sitelogs/pkg/errors"
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func versionString() string {
	v := version
	if commit != "" {
		v += " (commit " + commit + ")"
	}
	if date != "" {
		v += " built " + date
	}
	return v
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(versionString())
	err := cli.NewRootCommand(app).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FailureLine(err))
		os.Exit(errors.ExitCode(err))
	}
}
