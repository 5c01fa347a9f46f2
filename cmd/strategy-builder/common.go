package main

import (
	"io"

	"github.com/rxtech-lab/argo-strategy-builder/internal/history"
	"github.com/rxtech-lab/argo-strategy-builder/internal/logger"
	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/graphfile"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap/zapcore"
)

// historyFlag points at the DuckDB history database.
func historyFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "history",
		Usage:   usage,
		Sources: cli.EnvVars("STRATEGY_BUILDER_HISTORY"),
	}
}

func stdout(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func stderr(cmd *cli.Command) io.Writer {
	return cmd.Root().ErrWriter
}

// newLogger logs errors only unless --verbose is set; warnings are printed
// by the commands themselves.
func newLogger(cmd *cli.Command) (*logger.Logger, error) {
	level := zapcore.ErrorLevel
	if cmd.Bool("verbose") {
		level = zapcore.DebugLevel
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	return log, nil
}

// graphArg returns the single graph document argument.
func graphArg(cmd *cli.Command) (string, error) {
	if cmd.NArg() != 1 {
		return "", errors.Newf(errors.ErrCodeMissingParameter, "%s expects exactly one graph document, got %d arguments", cmd.Name, cmd.NArg())
	}

	return cmd.Args().First(), nil
}

// loadGraph reads and builds a graph document.
func loadGraph(path string) (*graphfile.Document, *types.Graph, error) {
	doc, err := graphfile.Load(path)
	if err != nil {
		return nil, nil, err
	}

	graph, err := graphfile.Build(doc, nodes.NewDefaultRegistry())
	if err != nil {
		return nil, nil, err
	}

	return doc, graph, nil
}

// openHistory opens the history store named by --history, or returns nil
// when the flag is empty.
func openHistory(cmd *cli.Command, log *logger.Logger) (history.Store, error) {
	path := cmd.String("history")
	if path == "" {
		return nil, nil
	}

	store, err := history.NewDuckDBStore(path, log)
	if err != nil {
		return nil, err
	}

	return store, nil
}
