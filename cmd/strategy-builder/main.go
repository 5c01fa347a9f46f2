// Command strategy-builder compiles strategy graph documents into Freqtrade
// strategies and runs the framework to backtest, optimize or trade them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-strategy-builder/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "strategy-builder",
		Usage:   "Compile strategy graphs into Freqtrade strategies",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log at debug level",
			},
		},
		Commands: []*cli.Command{
			exportCommand(),
			validateCommand(),
			nodesCommand(),
			schemaCommand(),
			serveCommand(),
			historyCommand(),
			backtestCommand(),
			hyperoptCommand(),
			tradeCommand(),
		},
	}
}
