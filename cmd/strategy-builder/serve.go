package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rxtech-lab/argo-strategy-builder/internal/api"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the compiler over HTTP for the graph editor",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				Value:   ":8080",
				Sources: cli.EnvVars("STRATEGY_BUILDER_ADDR"),
			},
			&cli.StringFlag{
				Name:    "cors-origin",
				Usage:   "Allowed CORS origin",
				Value:   api.DefaultAllowedOrigin,
				Sources: cli.EnvVars("CORS_ALLOWED_ORIGIN"),
			},
			historyFlag("Record exports in this history database"),
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := openHistory(cmd, log)
	if err != nil {
		return err
	}

	if store != nil {
		defer store.Close()
	}

	addr := cmd.String("addr")
	server := &http.Server{
		Addr: addr,
		Handler: api.NewServer(api.Config{
			Registry:          nil,
			Store:             store,
			Logger:            log,
			AllowedOrigin:     cmd.String("cors-origin"),
			FallbackTimeframe: "",
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- server.ListenAndServe()
	}()

	log.Info("Strategy builder API listening", zap.String("addr", addr))
	fmt.Fprintln(stderr(cmd), SuccessStyle.Render("Listening on "+addr))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to serve on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("Shutting down API server")

		return server.Shutdown(shutdownCtx)
	}
}
