package compiler

import (
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-strategy-builder/internal/logger"
	"github.com/rxtech-lab/argo-strategy-builder/internal/types"
	"github.com/rxtech-lab/argo-strategy-builder/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultStrategyName is the class name used when none is configured.
	DefaultStrategyName = "GeneratedStrategy"
	// DefaultTimeframe is used when no MarketData node sets a timeframe.
	DefaultTimeframe = "1h"
)

// Options configures an Exporter. Zero values select the defaults.
type Options struct {
	// StrategyName is the generated class name. It is sanitized to a Python
	// identifier.
	StrategyName string
	// Description becomes the class docstring.
	Description string
	// FallbackTimeframe is used when no MarketData node has a timeframe.
	FallbackTimeframe string
	// Renderer overrides the Freqtrade renderer.
	Renderer Renderer
	// Logger receives warnings and a summary after each export.
	Logger *logger.Logger
}

// Result is a successful export.
type Result struct {
	Source    string    `json:"source"`
	ClassName string    `json:"class_name"`
	Timeframe string    `json:"timeframe"`
	Order     []string  `json:"order"`
	Warnings  []Warning `json:"warnings"`
	Sections  Sections  `json:"-"`
}

// Exporter runs Analyze, Validate, the section generators and the renderer.
// It holds no mutable state and may be shared between goroutines.
type Exporter struct {
	className         string
	description       string
	fallbackTimeframe string
	renderer          Renderer
	logger            *logger.Logger
}

// NewExporter creates an Exporter.
func NewExporter(options Options) *Exporter {
	fallback := strings.TrimSpace(options.FallbackTimeframe)
	if fallback == "" {
		fallback = DefaultTimeframe
	}

	renderer := options.Renderer
	if renderer == nil {
		renderer = NewFreqtradeRenderer()
	}

	log := options.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Exporter{
		className:         ClassName(options.StrategyName),
		description:       options.Description,
		fallbackTimeframe: fallback,
		renderer:          renderer,
		logger:            log,
	}
}

// ClassName returns the class name the exporter generates.
func (e *Exporter) ClassName() string {
	return e.className
}

// Inspect analyzes and validates a graph without generating code. A nil error
// with a failing report means the graph is well formed but not compilable.
func (e *Exporter) Inspect(graph types.GraphView) (*Analysis, Report, error) {
	analysis, err := Analyze(graph)
	if err != nil {
		return nil, Report{Problems: nil, Warnings: nil}, err
	}

	return analysis, Validate(analysis), nil
}

// Export compiles a graph into strategy source.
func (e *Exporter) Export(graph types.GraphView) (*Result, error) {
	result, err := e.export(graph)
	if err != nil {
		e.logger.Error("Strategy export failed",
			zap.String("strategy", e.className),
			zap.Int("code", int(errors.GetCode(err))),
			zap.Error(err),
		)

		return nil, err
	}

	for _, warning := range result.Warnings {
		e.logger.Warn("Strategy export warning",
			zap.String("code", string(warning.Code)),
			zap.String("node_id", warning.NodeID),
			zap.String("message", warning.Message),
		)
	}

	e.logger.Debug("Strategy exported",
		zap.String("strategy", result.ClassName),
		zap.String("timeframe", result.Timeframe),
		zap.Int("nodes", len(result.Order)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int("bytes", len(result.Source)),
	)

	return result, nil
}

func (e *Exporter) export(graph types.GraphView) (*Result, error) {
	if graph == nil || len(graph.AllNodes()) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGraph, "graph has no nodes")
	}

	analysis, report, err := e.Inspect(graph)
	if err != nil {
		return nil, err
	}

	if invalid := report.Err(); invalid != nil {
		return nil, invalid
	}

	sections, warnings := GenerateSections(analysis)
	timeframe := e.timeframe(analysis)

	source, err := e.renderer.Render(Document{
		ClassName:   e.className,
		Description: e.description,
		Timeframe:   timeframe,
		CanShort:    canShort(analysis),
		Sections:    sections,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Source:    source,
		ClassName: e.className,
		Timeframe: timeframe,
		Order:     analysis.Order(),
		Warnings:  append(report.Warnings, warnings...),
		Sections:  sections,
	}, nil
}

// timeframe reads the first MarketData node in graph order.
func (e *Exporter) timeframe(analysis *Analysis) string {
	first := firstOf(analysis.Category(types.CategoryMarketData))
	if first.IsNone() {
		return e.fallbackTimeframe
	}

	timeframe := strings.TrimSpace(first.Unwrap().Parameters.String("timeframe", ""))
	if timeframe == "" {
		return e.fallbackTimeframe
	}

	return timeframe
}

func canShort(analysis *Analysis) bool {
	for _, d := range analysis.Category(types.CategoryEnter) {
		if types.ParseSide(d.Parameters.String("side", string(types.SideLong))).Short() {
			return true
		}
	}

	return false
}

func firstOf(descriptors []Descriptor) optional.Option[Descriptor] {
	if len(descriptors) == 0 {
		return optional.None[Descriptor]()
	}

	return optional.Some(descriptors[0])
}
