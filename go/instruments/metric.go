package instruments

import "time"

// FieldValue is one of the typed values a ReportMetric field or tag may
// carry, mirroring the influxive_core::DataType enum the original uses.
type FieldValue struct {
	kind byte // 'b' bool, 'i' int64, 'u' uint64, 'f' float64, 's' string
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
}

func BoolValue(v bool) FieldValue    { return FieldValue{kind: 'b', b: v} }
func IntValue(v int64) FieldValue    { return FieldValue{kind: 'i', i: v} }
func UintValue(v uint64) FieldValue  { return FieldValue{kind: 'u', u: v} }
func FloatValue(v float64) FieldValue { return FieldValue{kind: 'f', f: v} }
func StringValue(v string) FieldValue { return FieldValue{kind: 's', s: v} }

// String renders the value for line-protocol/tag egress.
func (v FieldValue) String() string {
	switch v.kind {
	case 'b':
		if v.b {
			return "true"
		}
		return "false"
	case 'i':
		return itoa(v.i)
	case 'u':
		return utoa(v.u)
	case 'f':
		return ftoa(v.f)
	default:
		return v.s
	}
}

// IsNumeric reports whether the value should be written unquoted in line
// protocol (int/uint/float/bool), as opposed to a quoted string field.
func (v FieldValue) IsNumeric() bool {
	return v.kind != 's'
}

// LineProtocolLiteral renders the field the way line protocol expects it:
// numeric types get their influx-style suffix, strings are quoted.
func (v FieldValue) LineProtocolLiteral() string {
	switch v.kind {
	case 'b':
		return v.String()
	case 'i':
		return itoa(v.i) + "i"
	case 'u':
		return utoa(v.u) + "u"
	case 'f':
		return ftoa(v.f)
	default:
		return quote(v.s)
	}
}

// ReportMetric is a custom, user-defined metric. It is immutable after
// construction; the With* methods return a modified copy, mirroring the
// Rust builder-style API.
type ReportMetric struct {
	Name      string
	Timestamp time.Time
	Fields    map[string]FieldValue
	Tags      map[string]FieldValue
}

// egressPrefix matches spec.md §3.2: "a name (prefixed wt.custom. before
// egress)".
const egressPrefix = "wt.custom."

// NewReportMetric starts a new custom metric. The name is prefixed with
// "wt.custom." eagerly, here at construction, so metric.Name already holds
// the prefixed name, matching the Rust type's behavior of storing the
// prefixed name immediately.
func NewReportMetric(name string) ReportMetric {
	return ReportMetric{
		Name:      egressPrefix + name,
		Timestamp: time.Now(),
		Fields:    make(map[string]FieldValue),
		Tags:      make(map[string]FieldValue),
	}
}

// WithField returns a copy of m with an additional field.
func (m ReportMetric) WithField(name string, value FieldValue) ReportMetric {
	var out = m.clone()
	out.Fields[name] = value
	return out
}

// WithTag returns a copy of m with an additional tag.
func (m ReportMetric) WithTag(name string, value FieldValue) ReportMetric {
	var out = m.clone()
	out.Tags[name] = value
	return out
}

func (m ReportMetric) clone() ReportMetric {
	var out = ReportMetric{
		Name:      m.Name,
		Timestamp: m.Timestamp,
		Fields:    make(map[string]FieldValue, len(m.Fields)),
		Tags:      make(map[string]FieldValue, len(m.Tags)),
	}
	for k, v := range m.Fields {
		out.Fields[k] = v
	}
	for k, v := range m.Tags {
		out.Tags[k] = v
	}
	return out
}
