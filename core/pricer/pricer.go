// Package pricer wires the three pipeline stages together: load the
// immutable configuration once, then price quotes one at a time or in
// parallel batches. A Context is never mutated after LoadContext returns;
// configuration reload means building a fresh Context and swapping the
// pointer, so no reader ever observes a half-updated table.
package pricer

import (
	"context"

	"go.uber.org/zap"

	"quote-pricer/core/rating"
	"quote-pricer/core/transform"
	"quote-pricer/core/types"
	"quote-pricer/internal/config"
	"quote-pricer/internal/errors"
	"quote-pricer/internal/logging"
)

// Context is the immutable bundle of loaded configuration: category
// mapping, band specification, rating plan and tables. Safe for
// concurrent use across any number of quotes.
type Context struct {
	pipeline *transform.Pipeline
	engine   *rating.Engine
}

// LoadContext loads and validates every configuration artifact. Any
// defect is fatal here, at startup, rather than per record.
func LoadContext(cfg *config.Config) (*Context, error) {
	categories, err := transform.LoadCategoryConfig(cfg.Pipeline.CategoryIndexPath)
	if err != nil {
		return nil, err
	}

	banding, err := transform.LoadBandingConfig(cfg.Pipeline.BandingPath)
	if err != nil {
		return nil, err
	}

	pipeline, err := transform.NewPipeline(transform.Options{
		PrimaryKey:  cfg.Pipeline.PrimaryKey,
		Derivations: cfg.Pipeline.Derivations,
		Categories:  categories,
		Banding:     banding,
		Workers:     cfg.Pipeline.Workers,
	})
	if err != nil {
		return nil, err
	}

	plan, err := rating.LoadPlan(cfg.Rating.PlanPath)
	if err != nil {
		return nil, err
	}

	tables, err := rating.LoadTables(cfg.Rating.TablesDir)
	if err != nil {
		return nil, err
	}

	engine, err := rating.NewEngine(plan, tables, cfg.Pipeline.PrimaryKey)
	if err != nil {
		return nil, err
	}

	logging.Info("rating context loaded",
		zap.Int("category_fields", len(categories)),
		zap.Int("banded_fields", len(banding)),
		zap.Int("factors", len(plan.Factors)),
		zap.Int("tables", len(tables)))

	return &Context{pipeline: pipeline, engine: engine}, nil
}

// PrimaryKey returns the configured record identifier field
func (c *Context) PrimaryKey() string {
	return c.pipeline.PrimaryKey()
}

// QuoteResult is the interactive (single-quote) output: the premium
// breakdown plus the transformed record, so calling layers can display
// the intermediate stage.
type QuoteResult struct {
	// Transformed is the record after derivations, indexing and banding
	Transformed types.Record `json:"transformed"`

	// Premium is the full premium breakdown
	Premium *types.PremiumResult `json:"premium"`
}

// PriceQuote transforms and rates one raw record. Errors propagate
// directly to the caller.
func (c *Context) PriceQuote(raw types.Record) (*QuoteResult, error) {
	transformed, err := c.pipeline.Transform(raw)
	if err != nil {
		return nil, err
	}

	premium, err := c.engine.Rate(transformed)
	if err != nil {
		return nil, err
	}

	return &QuoteResult{Transformed: transformed, Premium: premium}, nil
}

// BatchOutcome is the per-record result of a batch run: either a premium
// breakdown or a structured error descriptor, never both
type BatchOutcome struct {
	// Position is the record's index in the input table
	Position int `json:"position"`

	// RecordID is the primary-key value, when present
	RecordID string `json:"record_id,omitempty"`

	// Premium is the breakdown on success
	Premium *types.PremiumResult `json:"premium,omitempty"`

	// Err is the structured failure descriptor
	Err *errors.Error `json:"error,omitempty"`
}

// BatchResult is the output of a batch run
type BatchResult struct {
	// Outcomes holds one entry per input record, in input order
	Outcomes []BatchOutcome `json:"outcomes"`

	// Succeeded counts successful records
	Succeeded int `json:"succeeded"`

	// Failed counts failed records
	Failed int `json:"failed"`
}

// PriceBatch transforms and rates every record of a table. A failing
// record becomes an error outcome; the batch never aborts.
func (c *Context) PriceBatch(ctx context.Context, table *types.Table) *BatchResult {
	transformed := c.pipeline.TransformTable(ctx, table)

	result := &BatchResult{Outcomes: make([]BatchOutcome, len(transformed))}
	for i, outcome := range transformed {
		out := BatchOutcome{Position: outcome.Position, RecordID: outcome.RecordID}

		switch {
		case outcome.Err != nil:
			out.Err = outcome.Err
		default:
			premium, err := c.engine.Rate(outcome.Record)
			if err != nil {
				out.Err = errors.AsError(err)
			} else {
				out.Premium = premium
			}
		}

		if out.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
		result.Outcomes[i] = out
	}

	return result
}
