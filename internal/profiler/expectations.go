package profiler

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"

	"github.com/expectation-labs/gxctl/internal/suite"
	"github.com/expectation-labs/gxctl/internal/validation"
)

// Expectation types emitted by the basic profiler.
const (
	ExpectRowCountBetween    = "expect_table_row_count_to_be_between"
	ExpectColumnsOrderedList = "expect_table_columns_to_match_ordered_list"
	ExpectNotNull            = "expect_column_values_to_not_be_null"
	ExpectValuesBetween      = "expect_column_values_to_be_between"
	ExpectUniqueCountBetween = "expect_column_unique_value_count_to_be_between"
)

const profilerMetaKey = "BasicSuiteProfiler"

// buildExpectations adds table-level expectations and, for the first
// maxColumns columns, not-null, value range and distinct count expectations.
func buildExpectations(s *suite.Suite, sample *Sample, maxColumns int) {
	rowCount := len(sample.Rows)
	low, high := widen(rowCount)
	s.Add(ExpectRowCountBetween, map[string]interface{}{"min_value": low, "max_value": high})

	columns := make([]interface{}, len(sample.Columns))
	for i, c := range sample.Columns {
		columns[i] = c
	}
	s.Add(ExpectColumnsOrderedList, map[string]interface{}{"column_list": columns})

	for i, name := range profiledColumns(sample.Columns, maxColumns) {
		values := sample.Column(i)
		stats := describe(values)

		if stats.nulls == 0 && len(values) > 0 {
			s.Add(ExpectNotNull, map[string]interface{}{"column": name})
		}
		if stats.numeric {
			s.Add(ExpectValuesBetween, map[string]interface{}{
				"column":    name,
				"min_value": stats.min,
				"max_value": stats.max,
			})
		}
		low, high := widen(stats.distinct)
		s.Add(ExpectUniqueCountBetween, map[string]interface{}{
			"column":    name,
			"min_value": low,
			"max_value": high,
		})
	}

	for i := range s.Expectations {
		s.Expectations[i].Meta = map[string]interface{}{profilerMetaKey: map[string]interface{}{"confidence": "very low"}}
	}
}

// widen turns an observed count into a tolerant range, 90% to 110%.
func widen(n int) (int, int) {
	return n * 9 / 10, (n*11 + 9) / 10
}

type columnStats struct {
	nulls    int
	distinct int
	numeric  bool
	min, max float64
}

func describe(values []sql.NullString) columnStats {
	stats := columnStats{numeric: true}
	seen := map[string]struct{}{}
	nonNull := 0

	for _, v := range values {
		if !v.Valid {
			stats.nulls++
			continue
		}
		nonNull++
		seen[v.String] = struct{}{}

		f, err := strconv.ParseFloat(v.String, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			stats.numeric = false
			continue
		}
		if nonNull == 1 || f < stats.min {
			stats.min = f
		}
		if nonNull == 1 || f > stats.max {
			stats.max = f
		}
	}
	stats.distinct = len(seen)
	if nonNull == 0 {
		stats.numeric = false
	}
	return stats
}

// Evaluate validates sample against every expectation of s.
func Evaluate(s *suite.Suite, sample *Sample) []validation.ExpectationResult {
	results := make([]validation.ExpectationResult, 0, len(s.Expectations))
	for _, e := range s.Expectations {
		success, observed := evaluate(e, sample)
		results = append(results, validation.ExpectationResult{
			Success:           success,
			ExpectationConfig: e,
			Result:            observed,
		})
	}
	return results
}

func evaluate(e suite.Expectation, sample *Sample) (bool, map[string]interface{}) {
	switch e.ExpectationType {
	case ExpectRowCountBetween:
		n := len(sample.Rows)
		return inRange(float64(n), e.Kwargs), map[string]interface{}{"observed_value": n}

	case ExpectColumnsOrderedList:
		want, _ := e.Kwargs["column_list"].([]interface{})
		ok := len(want) == len(sample.Columns)
		for i := 0; ok && i < len(want); i++ {
			ok = fmt.Sprint(want[i]) == sample.Columns[i]
		}
		return ok, map[string]interface{}{"observed_value": sample.Columns}
	}

	idx := columnIndex(sample, e.Kwargs["column"])
	if idx < 0 {
		return false, map[string]interface{}{"details": "column not found"}
	}
	values := sample.Column(idx)
	stats := describe(values)

	switch e.ExpectationType {
	case ExpectNotNull:
		return stats.nulls == 0, map[string]interface{}{
			"element_count":      len(values),
			"unexpected_count":   stats.nulls,
			"unexpected_percent": percent(stats.nulls, len(values)),
		}

	case ExpectValuesBetween:
		unexpected := 0
		for _, v := range values {
			if !v.Valid {
				continue
			}
			f, err := strconv.ParseFloat(v.String, 64)
			if err != nil || !inRange(f, e.Kwargs) {
				unexpected++
			}
		}
		nonNull := len(values) - stats.nulls
		return unexpected == 0, map[string]interface{}{
			"element_count":      len(values),
			"missing_count":      stats.nulls,
			"unexpected_count":   unexpected,
			"unexpected_percent": percent(unexpected, nonNull),
		}

	case ExpectUniqueCountBetween:
		return inRange(float64(stats.distinct), e.Kwargs), map[string]interface{}{"observed_value": stats.distinct}

	default:
		return false, map[string]interface{}{"details": "unsupported expectation type"}
	}
}

func columnIndex(sample *Sample, column interface{}) int {
	name, _ := column.(string)
	for i, c := range sample.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

func inRange(v float64, kwargs map[string]interface{}) bool {
	if min, ok := toFloat(kwargs["min_value"]); ok && v < min {
		return false
	}
	if max, ok := toFloat(kwargs["max_value"]); ok && v > max {
		return false
	}
	return true
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	default:
		return 0, false
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
