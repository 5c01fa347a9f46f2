// Package history records every successful export so earlier versions of a
// strategy can be listed and restored.
package history

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-strategy-builder/internal/compiler"
)

// Entry is one recorded export.
type Entry struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	StrategyName string    `json:"strategy_name"`
	Timeframe    string    `json:"timeframe"`
	NodeCount    int       `json:"node_count"`
	WarningCount int       `json:"warning_count"`
	SourceSHA256 string    `json:"source_sha256"`
	Source       string    `json:"source,omitempty"`
}

// Filter narrows List. Zero values match everything; Limit 0 means no limit.
type Filter struct {
	StrategyName string
	Limit        uint64
	// WithSource includes the generated source in listed entries.
	WithSource bool
}

// Store persists export history.
type Store interface {
	// Record saves an entry and returns it as stored.
	Record(ctx context.Context, entry Entry) (Entry, error)
	// List returns entries, newest first.
	List(ctx context.Context, filter Filter) ([]Entry, error)
	// Get returns one entry including its source.
	Get(ctx context.Context, id string) (Entry, error)
	// Write exports the history to a Parquet file under dir.
	Write(ctx context.Context, dir string) (string, error)
	Close() error
}

// NewEntry describes a successful export.
func NewEntry(result *compiler.Result) Entry {
	sum := sha256.Sum256([]byte(result.Source))

	return Entry{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
		StrategyName: result.ClassName,
		Timeframe:    result.Timeframe,
		NodeCount:    len(result.Order),
		WarningCount: len(result.Warnings),
		SourceSHA256: hex.EncodeToString(sum[:]),
		Source:       result.Source,
	}
}
