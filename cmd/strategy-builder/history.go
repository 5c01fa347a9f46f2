package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-strategy-builder/internal/history"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/urfave/cli/v3"
)

const defaultHistoryPath = "strategy_history.duckdb"

func historyCommand() *cli.Command {
	flag := historyFlag("History database")
	flag.Value = defaultHistoryPath

	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded exports",
		Flags: []cli.Flag{flag},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded exports, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "strategy",
						Usage: "Only list exports of this strategy class",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries, 0 for all",
						Value: 20,
					},
				},
				Action: historyListAction,
			},
			{
				Name:      "show",
				Usage:     "Print the source of a recorded export",
				ArgsUsage: "<id>",
				Action:    historyShowAction,
			},
			{
				Name:  "parquet",
				Usage: "Export the history to a Parquet file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   ".",
					},
				},
				Action: historyParquetAction,
			},
		},
	}
}

// withHistory opens the history database for the duration of fn.
func withHistory(cmd *cli.Command, fn func(store history.Store) error) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := openHistory(cmd, log)
	if err != nil {
		return err
	}

	if store == nil {
		return errors.New(errors.ErrCodeHistoryUnavailable, "no history database configured, use --history")
	}
	defer store.Close()

	return fn(store)
}

func historyListAction(ctx context.Context, cmd *cli.Command) error {
	limit := cmd.Int("limit")
	if limit < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "limit must not be negative, got %d", limit)
	}

	return withHistory(cmd, func(store history.Store) error {
		entries, err := store.List(ctx, history.Filter{
			StrategyName: cmd.String("strategy"),
			Limit:        uint64(limit),
			WithSource:   false,
		})
		if err != nil {
			return err
		}

		out := stdout(cmd)
		if len(entries) == 0 {
			fmt.Fprintln(out, HelpStyle.Render("No exports recorded"))

			return nil
		}

		for _, entry := range entries {
			fmt.Fprintf(out, "%s  %s  %-24s %-4s nodes=%d warnings=%d  %s\n",
				entry.ID,
				entry.CreatedAt.Format("2006-01-02 15:04:05"),
				TitleStyle.Render(entry.StrategyName),
				entry.Timeframe,
				entry.NodeCount,
				entry.WarningCount,
				HelpStyle.Render(entry.SourceSHA256[:12]),
			)
		}

		return nil
	})
}

func historyShowAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "history show expects an export id")
	}

	return withHistory(cmd, func(store history.Store) error {
		entry, err := store.Get(ctx, cmd.Args().First())
		if err != nil {
			return err
		}

		fmt.Fprint(stdout(cmd), entry.Source)

		return nil
	})
}

func historyParquetAction(ctx context.Context, cmd *cli.Command) error {
	return withHistory(cmd, func(store history.Store) error {
		path, err := store.Write(ctx, cmd.String("output"))
		if err != nil {
			return err
		}

		fmt.Fprintln(stdout(cmd), SuccessStyle.Render("History written to "+path))

		return nil
	})
}
