package instruments

import (
	"sort"
	"strconv"
	"strings"
)

// OperationDurationMeasurement is the fixed measurement name operation
// records are egressed under, per spec.md §4.C.
const OperationDurationMeasurement = "wt.instruments.operation_duration"

// Point is a single flattened line-protocol point: a measurement, a set of
// tags, a set of fields, and a timestamp in nanoseconds since the Unix
// epoch. Collectors that write line protocol or push batches over HTTP both
// consume this shape so the wire-format logic lives in one place.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]FieldValue
	UnixNano    int64
}

// OperationPoint converts a finalised OperationRecord into its egress Point,
// per spec.md §4.C: "measurement name wt.instruments.operation_duration,
// field value = elapsed microseconds / 1000 as float (milliseconds), tags
// operation_id, is_error, plus all attribute entries as tags."
func OperationPoint(record *OperationRecord) Point {
	var tags = record.Attrs()
	tags["operation_id"] = record.OperationID
	tags["is_error"] = strconv.FormatBool(record.IsError)

	var millis = float64(record.Duration().Microseconds()) / 1000.0

	return Point{
		Measurement: OperationDurationMeasurement,
		Tags:        tags,
		Fields:      map[string]FieldValue{"value": FloatValue(millis)},
		UnixNano:    record.started.Add(record.Duration()).UnixNano(),
	}
}

// MetricPoint converts a custom ReportMetric into its egress Point.
func MetricPoint(metric ReportMetric) Point {
	var tags = make(map[string]string, len(metric.Tags))
	for k, v := range metric.Tags {
		tags[k] = v.String()
	}
	return Point{
		Measurement: metric.Name,
		Tags:        tags,
		Fields:      metric.Fields,
		UnixNano:    metric.Timestamp.UnixNano(),
	}
}

// LineProtocol renders p as a single InfluxDB line-protocol line (no
// trailing newline): "measurement,tag=val field=val timestamp".
func (p Point) LineProtocol() string {
	var b strings.Builder
	b.WriteString(escapeTagComponent(p.Measurement))

	var tagKeys = make([]string, 0, len(p.Tags))
	for k := range p.Tags {
		tagKeys = append(tagKeys, k)
	}
	sort.Strings(tagKeys)
	for _, k := range tagKeys {
		b.WriteByte(',')
		b.WriteString(escapeTagComponent(k))
		b.WriteByte('=')
		b.WriteString(escapeTagComponent(p.Tags[k]))
	}

	b.WriteByte(' ')

	var fieldKeys = make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		fieldKeys = append(fieldKeys, k)
	}
	sort.Strings(fieldKeys)
	for i, k := range fieldKeys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeTagComponent(k))
		b.WriteByte('=')
		b.WriteString(p.Fields[k].LineProtocolLiteral())
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(p.UnixNano, 10))

	return b.String()
}
