package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-strategy-builder/internal/compiler"
	"github.com/rxtech-lab/argo-strategy-builder/internal/history"
	"github.com/rxtech-lab/argo-strategy-builder/internal/nodes"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/graphfile"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Compile a graph document into a strategy file",
		ArgsUsage: "<graph.json|graph.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the strategy to this file or directory instead of stdout",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Strategy class name, overrides the document's strategy_name",
			},
			&cli.StringFlag{
				Name:  "timeframe",
				Usage: "Timeframe used when no Market Data node sets one",
				Value: compiler.DefaultTimeframe,
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Fail when the export produces warnings",
			},
			historyFlag("Record the export in this history database"),
		},
		Action: exportAction,
	}
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	path, err := graphArg(cmd)
	if err != nil {
		return err
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	doc, graph, err := loadGraph(path)
	if err != nil {
		return err
	}

	name := cmd.String("name")
	if name == "" {
		name = doc.StrategyName
	}

	result, err := compiler.NewExporter(compiler.Options{
		StrategyName:      name,
		Description:       doc.Description,
		FallbackTimeframe: cmd.String("timeframe"),
		Renderer:          nil,
		Logger:            log,
	}).Export(graph)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintln(stderr(cmd), FormatWarning(warning))
	}

	if cmd.Bool("strict") && len(result.Warnings) > 0 {
		return errors.Newf(errors.ErrCodeInvalidGraphDocument, "export produced %d warnings", len(result.Warnings))
	}

	output := cmd.String("output")
	if output == "" {
		fmt.Fprint(stdout(cmd), result.Source)
	} else {
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			output = filepath.Join(output, result.ClassName+".py")
		}

		if err := os.WriteFile(output, []byte(result.Source), 0o644); err != nil {
			return errors.Wrapf(errors.ErrCodeRenderFailed, err, "failed to write %s", output)
		}

		fmt.Fprintln(stdout(cmd), SuccessStyle.Render(fmt.Sprintf("Strategy %s written to %s", result.ClassName, output)))
	}

	store, err := openHistory(cmd, log)
	if err != nil {
		return err
	}

	if store == nil {
		return nil
	}
	defer store.Close()

	entry, err := store.Record(ctx, history.NewEntry(result))
	if err != nil {
		return err
	}

	log.Debug("Recorded export", zap.String("id", entry.ID))
	fmt.Fprintln(stderr(cmd), HelpStyle.Render("history id: "+entry.ID))

	return nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check a graph document without generating code",
		ArgsUsage: "<graph.json|graph.yaml>",
		Action:    validateAction,
	}
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	path, err := graphArg(cmd)
	if err != nil {
		return err
	}

	_, graph, err := loadGraph(path)
	if err != nil {
		return err
	}

	analysis, report, err := compiler.NewExporter(compiler.Options{}).Inspect(graph)
	if err != nil {
		return err
	}

	out := stdout(cmd)
	fmt.Fprintln(out, TitleStyle.Render("Execution order"))
	fmt.Fprintln(out, "  "+strings.Join(analysis.Order(), " -> "))

	for _, problem := range report.Problems {
		fmt.Fprintln(out, ErrorStyle.Render("error:")+" "+problem)
	}

	for _, warning := range report.Warnings {
		fmt.Fprintln(out, FormatWarning(warning))
	}

	if err := report.Err(); err != nil {
		return err
	}

	fmt.Fprintln(out, SuccessStyle.Render(fmt.Sprintf("%s is valid (%d nodes)", path, analysis.Len())))

	return nil
}

func nodesCommand() *cli.Command {
	return &cli.Command{
		Name:  "nodes",
		Usage: "List the node types a graph can use",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the node kinds with their defaults as JSON",
			},
		},
		Action: nodesAction,
	}
}

func nodesAction(_ context.Context, cmd *cli.Command) error {
	kinds := nodes.NewDefaultRegistry().List()
	out := stdout(cmd)

	if cmd.Bool("json") {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(kinds)
	}

	for _, kind := range kinds {
		fmt.Fprintf(out, "%s %s\n", TitleStyle.Render(kind.Type), HelpStyle.Render("("+kind.Category.String()+")"))

		if len(kind.Inputs) > 0 {
			fmt.Fprintf(out, "  inputs:  %s\n", strings.Join(kind.Inputs, ", "))
		}

		if len(kind.Outputs) > 0 {
			fmt.Fprintf(out, "  outputs: %s\n", strings.Join(kind.Outputs, ", "))
		}

		fmt.Fprintf(out, "  parameters: %d\n", len(kind.Defaults))
	}

	return nil
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of graph documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the schema to this file",
			},
		},
		Action: schemaAction,
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := graphfile.Schema()
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		fmt.Fprintln(stdout(cmd), schema)

		return nil
	}

	if err := os.WriteFile(output, []byte(schema), 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidGraphDocument, err, "failed to write %s", output)
	}

	return nil
}
