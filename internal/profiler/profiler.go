// Package profiler generates a starter expectation suite for a data asset
// from a sample of its rows, then validates the sample against it.
package profiler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/expectation-labs/gxctl/internal/datasource"
	"github.com/expectation-labs/gxctl/internal/logging"
	"github.com/expectation-labs/gxctl/internal/suite"
	"github.com/expectation-labs/gxctl/internal/validation"
)

const (
	DefaultMaxColumns = 2
	DefaultSampleRows = 1000
)

// Request names the asset to profile. Path is used by file-backed
// datasources, Table by SQL datasources.
type Request struct {
	Datasource datasource.Descriptor
	Asset      string
	SuiteName  string
	Path       string
	Table      string
}

// Output is a generated suite and the result of validating the profiled
// sample against it.
type Output struct {
	Suite      *suite.Suite
	Validation *validation.Result
}

// Profiler produces expectation suites.
type Profiler interface {
	Profile(ctx context.Context, req Request) (*Output, error)
}

// Failure is returned when an asset cannot be profiled. Reason is safe to
// show to the user.
type Failure struct {
	Asset  string
	Reason string
	Err    error
}

func (e *Failure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("profiling %s: %s: %v", e.Asset, e.Reason, e.Err)
	}
	return fmt.Sprintf("profiling %s: %s", e.Asset, e.Reason)
}

func (e *Failure) Unwrap() error {
	return e.Err
}

// Basic profiles CSV files and SQL tables.
type Basic struct {
	MaxColumns  int
	SampleRows  int
	ToolVersion string
	Logger      *slog.Logger
	Now         func() time.Time
}

// NewBasic returns a profiler with the given limits; non-positive values
// select the defaults.
func NewBasic(maxColumns, sampleRows int, toolVersion string, logger *slog.Logger) *Basic {
	if maxColumns <= 0 {
		maxColumns = DefaultMaxColumns
	}
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	return &Basic{
		MaxColumns:  maxColumns,
		SampleRows:  sampleRows,
		ToolVersion: toolVersion,
		Logger:      logging.OrDiscard(logger),
		Now:         time.Now,
	}
}

// Profile implements Profiler.
func (p *Basic) Profile(ctx context.Context, req Request) (*Output, error) {
	if req.Asset == "" || req.SuiteName == "" {
		return nil, &Failure{Asset: req.Asset, Reason: "an asset and a suite name are required"}
	}

	sample, err := p.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(sample.Columns) == 0 {
		return nil, &Failure{Asset: req.Asset, Reason: "the data has no columns"}
	}

	key := suite.NewKey(req.Datasource.Name, req.Asset, req.SuiteName)
	s := suite.New(key, req.Datasource.Kind.AssetClassName(), p.ToolVersion)
	s.Meta["columns"] = profiledColumns(sample.Columns, p.MaxColumns)
	buildExpectations(s, sample, p.MaxColumns)

	now := p.Now()
	results := Evaluate(s, sample)
	out := &Output{
		Suite:      s,
		Validation: validation.NewResult(validation.NewRunID(now), key, now, results),
	}

	p.Logger.Debug("asset profiled",
		"asset", req.Asset,
		"rows", len(sample.Rows),
		"columns", len(sample.Columns),
		"expectations", len(s.Expectations),
	)
	return out, nil
}

func (p *Basic) load(ctx context.Context, req Request) (*Sample, error) {
	switch req.Datasource.Kind {
	case datasource.KindFilesystem, datasource.KindSpark:
		if req.Path == "" {
			return nil, &Failure{Asset: req.Asset, Reason: "no data file was given"}
		}
		return readFileSample(ctx, req.Asset, req.Path, p.SampleRows)
	case datasource.KindSQL:
		if req.Table == "" {
			return nil, &Failure{Asset: req.Asset, Reason: "no table was given"}
		}
		if req.Datasource.SQL == nil {
			return nil, &Failure{Asset: req.Asset, Reason: "the datasource has no connection string"}
		}
		return readTableSample(ctx, req.Asset, req.Datasource.SQL.URL, req.Table, p.SampleRows)
	default:
		return nil, &Failure{Asset: req.Asset, Reason: fmt.Sprintf("%s datasources cannot be profiled", req.Datasource.Kind)}
	}
}

func profiledColumns(columns []string, max int) []string {
	if len(columns) > max {
		return columns[:max]
	}
	return columns
}
