// Package sqlitebackend is the bundled, runnable QueryClient: it ingests a
// line-protocol metrics file (the format go/instruments/collectors/lineprotocol
// writes) into a SQLite database and answers summariser.QueryClient queries
// against it with plain SQL, in place of the original's InfluxDB.
//
// Grounded in go/materialize/driver/sqlite/sqlite.go for how this codebase
// opens and uses database/sql against mattn/go-sqlite3, and in
// go/instruments/egress.go for the line-protocol wire format this package
// parses back out.
package sqlitebackend

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

// sqliteOpenMu serializes sql.Open+Ping the way go/materialize/driver/sqlite
// does: go-sqlite3 is fickle about racing opens of a freshly created file.
var sqliteOpenMu sync.Mutex

// Open opens (creating if necessary) a SQLite database at path and ensures
// the points table exists.
func Open(path string) (*sql.DB, error) {
	sqliteOpenMu.Lock()
	defer sqliteOpenMu.Unlock()

	var db, err = sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitebackend: opening %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitebackend: pinging %q: %w", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitebackend: creating schema: %w", err)
	}
	return db, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS points (
	measurement TEXT NOT NULL,
	tags        TEXT NOT NULL,
	field_key   TEXT NOT NULL,
	field_value REAL NOT NULL,
	unix_nano   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS points_measurement_idx ON points (measurement);
`

// IngestFile parses a line-protocol file written by
// go/instruments/collectors/lineprotocol and inserts every numeric field of
// every point as a row. Non-numeric (string, boolean) fields are skipped:
// every statistic in go/summariser/analyze.go operates on float64 columns.
func IngestFile(db *sql.DB, path string) (int, error) {
	var file, err = os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("sqlitebackend: opening %q: %w", path, err)
	}
	defer file.Close()

	var tx, txErr = db.Begin()
	if txErr != nil {
		return 0, fmt.Errorf("sqlitebackend: starting transaction: %w", txErr)
	}
	var stmt, stmtErr = tx.Prepare(`INSERT INTO points (measurement, tags, field_key, field_value, unix_nano) VALUES (?, ?, ?, ?, ?)`)
	if stmtErr != nil {
		tx.Rollback()
		return 0, fmt.Errorf("sqlitebackend: preparing insert: %w", stmtErr)
	}
	defer stmt.Close()

	var inserted int
	var scanner = bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		var line = scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		var pt, parseErr = parseLine(line)
		if parseErr != nil {
			tx.Rollback()
			return 0, fmt.Errorf("sqlitebackend: parsing line %q: %w", line, parseErr)
		}

		var tagsJSON, jsonErr = json.Marshal(pt.tags)
		if jsonErr != nil {
			tx.Rollback()
			return 0, fmt.Errorf("sqlitebackend: marshaling tags: %w", jsonErr)
		}

		for field, value := range pt.numericFields {
			if _, err := stmt.Exec(pt.measurement, string(tagsJSON), field, value, pt.unixNano); err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("sqlitebackend: inserting point: %w", err)
			}
			inserted++
		}
	}
	if err := scanner.Err(); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("sqlitebackend: scanning %q: %w", path, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlitebackend: committing: %w", err)
	}
	return inserted, nil
}

type parsedPoint struct {
	measurement   string
	tags          map[string]string
	numericFields map[string]float64
	unixNano      int64
}

// parseLine parses one "measurement,tag=val,... field=val,... timestamp"
// line, inverting instruments.Point.LineProtocol's escaping.
func parseLine(line string) (parsedPoint, error) {
	var fields = splitUnescaped(line, ' ')
	if len(fields) != 3 {
		return parsedPoint{}, fmt.Errorf("expected 3 space-separated sections, got %d", len(fields))
	}

	var measurementAndTags = splitUnescaped(fields[0], ',')
	if len(measurementAndTags) == 0 {
		return parsedPoint{}, fmt.Errorf("missing measurement")
	}
	var measurement = unescapeComponent(measurementAndTags[0])

	var tags = make(map[string]string, len(measurementAndTags)-1)
	for _, kv := range measurementAndTags[1:] {
		var parts = splitUnescaped(kv, '=')
		if len(parts) != 2 {
			return parsedPoint{}, fmt.Errorf("malformed tag %q", kv)
		}
		tags[unescapeComponent(parts[0])] = unescapeComponent(parts[1])
	}

	var numericFields = make(map[string]float64)
	for _, kv := range splitUnescaped(fields[1], ',') {
		var parts = splitUnescaped(kv, '=')
		if len(parts) != 2 {
			return parsedPoint{}, fmt.Errorf("malformed field %q", kv)
		}
		var key = unescapeComponent(parts[0])
		if value, ok := parseNumericLiteral(parts[1]); ok {
			numericFields[key] = value
		}
	}

	var unixNano, err = strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return parsedPoint{}, fmt.Errorf("parsing timestamp %q: %w", fields[2], err)
	}

	return parsedPoint{measurement: measurement, tags: tags, numericFields: numericFields, unixNano: unixNano}, nil
}

// parseNumericLiteral parses an integer ("42i"), unsigned ("42u"), or float
// ("3.14") line-protocol field literal. Boolean and quoted-string literals
// return ok=false: they carry no float64 statistic.
func parseNumericLiteral(s string) (float64, bool) {
	if strings.HasSuffix(s, "i") {
		var v, err = strconv.ParseInt(strings.TrimSuffix(s, "i"), 10, 64)
		return float64(v), err == nil
	}
	if strings.HasSuffix(s, "u") {
		var v, err = strconv.ParseUint(strings.TrimSuffix(s, "u"), 10, 64)
		return float64(v), err == nil
	}
	if strings.HasPrefix(s, `"`) {
		return 0, false
	}
	if s == "true" || s == "false" {
		return 0, false
	}
	var v, err = strconv.ParseFloat(s, 64)
	return v, err == nil
}

// splitUnescaped splits s on sep, treating a backslash-escaped sep, or one
// inside a double-quoted value that directly follows '=', as a literal
// character rather than a delimiter.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	var current strings.Builder
	var escaped, quoted bool
	for i := 0; i < len(s); i++ {
		var c = s[i]
		switch {
		case escaped:
			current.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
			current.WriteByte(c)
		case c == '"' && (quoted || (i > 0 && s[i-1] == '=')):
			quoted = !quoted
			current.WriteByte(c)
		case c == sep && !quoted:
			parts = append(parts, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	parts = append(parts, current.String())
	return parts
}

// unescapeComponent inverts escapeTagComponent: backslash-escaped commas,
// spaces, equals signs, and backslashes become their literal characters.
func unescapeComponent(s string) string {
	var r = strings.NewReplacer(
		`\,`, `,`,
		`\ `, ` `,
		`\=`, `=`,
		`\\`, `\`,
	)
	return r.Replace(s)
}
