package profiler

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/expectation-labs/gxctl/internal/datasource"
)

// Sample is the profiled slice of an asset. Invalid entries are nulls.
type Sample struct {
	Columns []string
	Rows    [][]sql.NullString
}

// Column returns the values of column i.
func (s *Sample) Column(i int) []sql.NullString {
	values := make([]sql.NullString, 0, len(s.Rows))
	for _, row := range s.Rows {
		if i < len(row) {
			values = append(values, row[i])
		} else {
			values = append(values, sql.NullString{})
		}
	}
	return values
}

func readFileSample(ctx context.Context, asset, path string, limit int) (*Sample, error) {
	var comma rune
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", "":
		comma = ','
	case ".tsv":
		comma = '\t'
	default:
		return nil, &Failure{Asset: asset, Reason: fmt.Sprintf("%s files are not supported yet, use a CSV or TSV file", filepath.Ext(path))}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &Failure{Asset: asset, Reason: "the data file could not be opened", Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1
	r.ReuseRecord = false

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Failure{Asset: asset, Reason: "the data file is empty"}
		}
		return nil, &Failure{Asset: asset, Reason: "the data file is not valid CSV", Err: err}
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	sample := &Sample{Columns: header}
	for len(sample.Rows) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &Failure{Asset: asset, Reason: "the data file is not valid CSV", Err: err}
		}
		row := make([]sql.NullString, len(header))
		for i := range header {
			if i < len(record) && record[i] != "" {
				row[i] = sql.NullString{String: record[i], Valid: true}
			}
		}
		sample.Rows = append(sample.Rows, row)
	}
	return sample, nil
}

func readTableSample(ctx context.Context, asset, url, table string, limit int) (*Sample, error) {
	conn, err := datasource.OpenSQL(url)
	if err != nil {
		return nil, &Failure{Asset: asset, Reason: "the database connection could not be opened", Err: err}
	}
	defer conn.Close()

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", conn.QuoteQualified(table), limit)
	rows, err := conn.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, &Failure{Asset: asset, Reason: fmt.Sprintf("table %s could not be read", table), Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &Failure{Asset: asset, Reason: "the table columns could not be read", Err: err}
	}

	sample := &Sample{Columns: columns}
	raw := make([]interface{}, len(columns))
	for i := range raw {
		raw[i] = new(interface{})
	}
	for rows.Next() {
		if err := rows.Scan(raw...); err != nil {
			return nil, &Failure{Asset: asset, Reason: "a row could not be read", Err: err}
		}
		row := make([]sql.NullString, len(columns))
		for i, v := range raw {
			row[i] = toNullString(*(v.(*interface{})))
		}
		sample.Rows = append(sample.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &Failure{Asset: asset, Reason: "the table could not be read", Err: err}
	}
	return sample, nil
}

func toNullString(v interface{}) sql.NullString {
	switch t := v.(type) {
	case nil:
		return sql.NullString{}
	case []byte:
		return sql.NullString{String: string(t), Valid: true}
	case string:
		return sql.NullString{String: t, Valid: true}
	default:
		return sql.NullString{String: fmt.Sprint(t), Valid: true}
	}
}
