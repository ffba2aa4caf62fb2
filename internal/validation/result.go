// Package validation persists the results of validating a data asset
// against an expectation suite, one JSON document per run:
// <base>/<run_id>/<datasource>/<generator>/<asset>/<suite>.json.
package validation

import (
	"time"

	"github.com/expectation-labs/gxctl/internal/suite"
)

// RunIDLayout formats run ids such as 20191007T151224.123456Z.
const RunIDLayout = "20060102T150405.000000Z"

// NewRunID returns the run id for t, in UTC.
func NewRunID(t time.Time) string {
	return t.UTC().Format(RunIDLayout)
}

// Statistics summarizes a run.
type Statistics struct {
	EvaluatedExpectations    int     `json:"evaluated_expectations"`
	SuccessfulExpectations   int     `json:"successful_expectations"`
	UnsuccessfulExpectations int     `json:"unsuccessful_expectations"`
	SuccessPercent           float64 `json:"success_percent"`
}

// ExpectationResult is the outcome of one expectation.
type ExpectationResult struct {
	Success           bool                   `json:"success"`
	ExpectationConfig suite.Expectation      `json:"expectation_config"`
	Result            map[string]interface{} `json:"result"`
}

// Meta identifies what was validated.
type Meta struct {
	RunID                string `json:"run_id"`
	ExpectationSuiteName string `json:"expectation_suite_name"`
	DataAssetName        string `json:"data_asset_name"`
	ValidationTime       string `json:"validation_time"`
}

// Result is a stored validation result.
type Result struct {
	Success    bool                `json:"success"`
	Statistics Statistics          `json:"statistics"`
	Results    []ExpectationResult `json:"results"`
	Meta       Meta                `json:"meta"`
}

// NewResult assembles a result for key from per-expectation outcomes and
// computes its statistics.
func NewResult(runID string, key suite.Key, at time.Time, results []ExpectationResult) *Result {
	if results == nil {
		results = []ExpectationResult{}
	}
	stats := Summarize(results)
	return &Result{
		Success:    stats.UnsuccessfulExpectations == 0,
		Statistics: stats,
		Results:    results,
		Meta: Meta{
			RunID:                runID,
			ExpectationSuiteName: key.Suite,
			DataAssetName:        key.DataAssetName(),
			ValidationTime:       at.UTC().Format(time.RFC3339),
		},
	}
}

// Summarize counts successes and failures.
func Summarize(results []ExpectationResult) Statistics {
	var s Statistics
	for _, r := range results {
		s.EvaluatedExpectations++
		if r.Success {
			s.SuccessfulExpectations++
		} else {
			s.UnsuccessfulExpectations++
		}
	}
	if s.EvaluatedExpectations > 0 {
		s.SuccessPercent = 100 * float64(s.SuccessfulExpectations) / float64(s.EvaluatedExpectations)
	}
	return s
}
