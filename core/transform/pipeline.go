// Package transform - Transformation pipeline orchestration
package transform

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"quote-pricer/core/types"
	"quote-pricer/internal/errors"
)

// Stage names used in error context
const (
	StageDerive = "derive"
	StageIndex  = "index"
	StageBand   = "band"
)

// Pipeline orchestrates derivations, indexing and banding in fixed order.
// Later stages may depend on fields derivations introduce, so the order
// never varies. A Pipeline is immutable after construction and safe for
// concurrent use across records.
type Pipeline struct {
	primaryKey  string
	derivations []Derivation
	categories  CategoryConfig
	banding     BandingConfig
	workers     int
}

// Options configures pipeline construction
type Options struct {
	// PrimaryKey is the required record identifier field
	PrimaryKey string

	// Derivations is the ordered list of custom derivation names
	Derivations []string

	// Categories is the loaded category mapping
	Categories CategoryConfig

	// Banding is the loaded band specification
	Banding BandingConfig

	// Workers bounds batch parallelism (0 = GOMAXPROCS)
	Workers int
}

// NewPipeline builds a pipeline, resolving derivation names eagerly so a
// bad configuration fails at startup, not per record.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.PrimaryKey == "" {
		return nil, errors.Config("pipeline primary key field is not configured", nil)
	}
	derivations, err := Derivations(opts.Derivations)
	if err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		primaryKey:  opts.PrimaryKey,
		derivations: derivations,
		categories:  opts.Categories,
		banding:     opts.Banding,
		workers:     workers,
	}, nil
}

// PrimaryKey returns the configured record identifier field
func (p *Pipeline) PrimaryKey() string {
	return p.primaryKey
}

// Transform produces one transformed record from one raw record. The raw
// record is never mutated. Failure in any stage fails the whole record
// with the stage and record identity attached.
func (p *Pipeline) Transform(raw types.Record) (types.Record, error) {
	if !raw.Has(p.primaryKey) {
		return nil, errors.Schema("record is missing primary key field " + p.primaryKey).
			WithField(p.primaryKey)
	}
	id := raw.Key(p.primaryKey)

	record := raw.Clone()

	for _, d := range p.derivations {
		if err := d.Apply(record); err != nil {
			return nil, errors.AsError(err).WithStage(StageDerive).WithRecord(id)
		}
	}

	if err := p.categories.applyIndexing(record); err != nil {
		return nil, errors.AsError(err).WithStage(StageIndex).WithRecord(id)
	}

	if err := p.banding.applyBanding(record); err != nil {
		return nil, errors.AsError(err).WithStage(StageBand).WithRecord(id)
	}

	return record, nil
}

// Outcome is the per-record result of a batch transformation
type Outcome struct {
	// Position is the record's index in the input table
	Position int `json:"position"`

	// RecordID is the primary-key value, when present
	RecordID string `json:"record_id,omitempty"`

	// Record is the transformed record on success
	Record types.Record `json:"record,omitempty"`

	// Err holds the structured failure on error
	Err *errors.Error `json:"error,omitempty"`
}

// TransformTable transforms every record of a table, in parallel across a
// bounded worker pool. Configuration is read-only, so workers share no
// mutable state. Per-record failures become error outcomes; the batch
// itself never aborts.
func (p *Pipeline) TransformTable(ctx context.Context, table *types.Table) []Outcome {
	outcomes := make([]Outcome, table.Len())

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, raw := range table.Records {
		i, raw := i, raw
		g.Go(func() error {
			outcome := Outcome{Position: i, RecordID: raw.Key(p.primaryKey)}
			record, err := p.Transform(raw)
			if err != nil {
				outcome.Err = errors.AsError(err)
			} else {
				outcome.Record = record
			}
			outcomes[i] = outcome
			return nil
		})
	}

	// workers never return errors; failures live in the outcomes
	_ = g.Wait()
	return outcomes
}
