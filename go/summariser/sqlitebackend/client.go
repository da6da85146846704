package sqlitebackend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/runsummary"
	"github.com/swarmbench/swarmbench/go/summariser"
)

// Client answers summariser.QueryClient queries against a SQLite database
// populated by IngestFile.
type Client struct {
	db *sql.DB
}

// NewClient wraps an already-open, already-ingested database.
func NewClient(db *sql.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Close() error {
	return c.db.Close()
}

func runWindow(run runsummary.RunSummary) (start, end int64) {
	start = time.Unix(run.StartedAt, 0).UnixNano()
	if run.RunDuration == nil {
		return start, time.Now().UnixNano()
	}
	end = time.Unix(run.StartedAt, 0).Add(time.Duration(*run.RunDuration) * time.Second).UnixNano()
	return start, end
}

// QueryInstrumentData implements summariser.QueryClient.
func (c *Client) QueryInstrumentData(ctx context.Context, run runsummary.RunSummary, operationID string) (summariser.Frame, error) {
	var start, end = runWindow(run)
	var rows, err = c.db.QueryContext(ctx,
		`SELECT tags, field_key, field_value, unix_nano FROM points
		 WHERE measurement = ? AND unix_nano BETWEEN ? AND ?`,
		instruments.OperationDurationMeasurement, start, end)
	if err != nil {
		return summariser.Frame{}, fmt.Errorf("sqlitebackend: querying instrument data: %w", err)
	}
	defer rows.Close()

	return scanFrame(rows, func(tags map[string]string) bool {
		return tags["operation_id"] == operationID
	}, nil)
}

// QueryCustomData implements summariser.QueryClient.
func (c *Client) QueryCustomData(ctx context.Context, run runsummary.RunSummary, metric string, tagKeys []string) (summariser.Frame, error) {
	var start, end = runWindow(run)
	var measurement = metric
	var rows, err = c.db.QueryContext(ctx,
		`SELECT tags, field_key, field_value, unix_nano FROM points
		 WHERE measurement = ? AND unix_nano BETWEEN ? AND ?`,
		measurement, start, end)
	if err != nil {
		return summariser.Frame{}, fmt.Errorf("sqlitebackend: querying custom data: %w", err)
	}
	defer rows.Close()

	return scanFrame(rows, nil, tagKeys)
}

// QueryZomeCallLikeData implements summariser.QueryClient.
func (c *Client) QueryZomeCallLikeData(ctx context.Context, run runsummary.RunSummary, operationIDs []string, tagKeys []string, isError bool) (summariser.Frame, error) {
	var start, end = runWindow(run)
	var rows, err = c.db.QueryContext(ctx,
		`SELECT tags, field_key, field_value, unix_nano FROM points
		 WHERE measurement = ? AND unix_nano BETWEEN ? AND ?`,
		instruments.OperationDurationMeasurement, start, end)
	if err != nil {
		return summariser.Frame{}, fmt.Errorf("sqlitebackend: querying zome-call-like data: %w", err)
	}
	defer rows.Close()

	var wantedIDs = make(map[string]bool, len(operationIDs))
	for _, id := range operationIDs {
		wantedIDs[id] = true
	}
	var wantError = fmt.Sprintf("%t", isError)

	return scanFrame(rows, func(tags map[string]string) bool {
		return wantedIDs[tags["operation_id"]] && tags["is_error"] == wantError
	}, tagKeys)
}

// scanFrame materializes rows into a Frame, applying keep (nil means "keep
// all") and projecting the requested tagKeys as Frame tag columns.
// mergedRow collects every field belonging to the same underlying point
// (same tags and timestamp), since a point with N fields becomes N rows in
// the points table.
type mergedRow struct {
	tags     map[string]string
	unixNano int64
	fields   map[string]float64
}

func scanFrame(rows *sql.Rows, keep func(tags map[string]string) bool, tagKeys []string) (summariser.Frame, error) {
	var order []string
	var byKey = map[string]*mergedRow{}
	var fieldNames = map[string]bool{}

	for rows.Next() {
		var tagsJSON, fieldKey string
		var fieldValue float64
		var unixNano int64
		if err := rows.Scan(&tagsJSON, &fieldKey, &fieldValue, &unixNano); err != nil {
			return summariser.Frame{}, fmt.Errorf("sqlitebackend: scanning row: %w", err)
		}

		var tags map[string]string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return summariser.Frame{}, fmt.Errorf("sqlitebackend: decoding tags: %w", err)
		}
		if keep != nil && !keep(tags) {
			continue
		}

		fieldNames[fieldKey] = true
		var key = fmt.Sprintf("%s|%d", tagsJSON, unixNano)
		var row, ok = byKey[key]
		if !ok {
			row = &mergedRow{tags: tags, unixNano: unixNano, fields: map[string]float64{}}
			byKey[key] = row
			order = append(order, key)
		}
		row.fields[fieldKey] = fieldValue
	}
	if err := rows.Err(); err != nil {
		return summariser.Frame{}, fmt.Errorf("sqlitebackend: iterating rows: %w", err)
	}

	var f = summariser.Frame{
		Numeric: make(map[string][]float64, len(fieldNames)),
		Tags:    make(map[string][]string, len(tagKeys)),
	}
	for name := range fieldNames {
		f.Numeric[name] = make([]float64, 0, len(order))
	}
	for _, key := range tagKeys {
		f.Tags[key] = make([]string, 0, len(order))
	}

	for _, key := range order {
		var row = byKey[key]
		f.Time = append(f.Time, time.Unix(0, row.unixNano))
		for name := range fieldNames {
			f.Numeric[name] = append(f.Numeric[name], row.fields[name])
		}
		for _, tagKey := range tagKeys {
			f.Tags[tagKey] = append(f.Tags[tagKey], row.tags[tagKey])
		}
	}
	return f, nil
}
