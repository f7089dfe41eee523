package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the closed set of value shapes a cell can take.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindText
	KindInteger
	KindDecimal
	KindBool
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindBool:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	}
	return "unknown"
}

// KindOfType maps a declared engine type (as reported by the catalog or as
// written in DDL) to a value kind.
func KindOfType(declared string) Kind {
	t := strings.ToLower(strings.TrimSpace(declared))
	switch {
	case t == "integer", t == "int", strings.HasPrefix(t, "int2"), strings.HasPrefix(t, "int4"),
		strings.HasPrefix(t, "int8"), strings.HasSuffix(t, "smallint"), strings.HasSuffix(t, "bigint"),
		strings.HasSuffix(t, "serial"):
		return KindInteger
	case strings.HasPrefix(t, "numeric"), strings.HasPrefix(t, "decimal"),
		strings.HasPrefix(t, "real"), strings.HasPrefix(t, "double"),
		strings.HasPrefix(t, "float"):
		return KindDecimal
	case t == "boolean", t == "bool":
		return KindBool
	case strings.HasPrefix(t, "timestamp"), t == "date":
		return KindTimestamp
	}
	return KindText
}

// maxSafeInteger is the largest integer a JSON number survives exactly in
// common clients.
const maxSafeInteger = 1<<53 - 1

// Value is a single typed cell.
type Value struct {
	kind Kind
	text string // Text, Decimal (canonical digits)
	i    int64
	b    bool
	t    time.Time
}

// Null returns the null value.
func Null() Value { return Value{} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Integer returns an integer value.
func Integer(i int64) Value { return Value{kind: KindInteger, i: i} }

// Decimal returns a decimal value from its textual form.
func Decimal(s string) Value { return Value{kind: KindDecimal, text: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Timestamp returns a timestamp value.
func Timestamp(t time.Time) Value { return Value{kind: KindTimestamp, t: t} }

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Arg returns the value as a database/sql bind argument.
func (v Value) Arg() any {
	switch v.kind {
	case KindText, KindDecimal:
		return v.text
	case KindInteger:
		return v.i
	case KindBool:
		return v.b
	case KindTimestamp:
		return v.t
	}
	return nil
}

// String renders the value as text; null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText, KindDecimal:
		return v.text
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTimestamp:
		return v.t.Format(time.RFC3339Nano)
	}
	return ""
}

// MarshalJSON renders integers outside the safe range and non-canonical
// decimals as strings so that no client loses precision silently.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindInteger:
		if v.i > maxSafeInteger || v.i < -maxSafeInteger {
			return json.Marshal(strconv.FormatInt(v.i, 10))
		}
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindDecimal:
		if isNumberLiteral(v.text) {
			return []byte(v.text), nil
		}
		return json.Marshal(v.text)
	case KindBool:
		return json.Marshal(v.b)
	case KindTimestamp:
		return json.Marshal(v.t.Format(time.RFC3339Nano))
	}
	return json.Marshal(v.text)
}

func isNumberLiteral(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339 and the common SQL literal layouts.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// CoerceValue resolves a decoded JSON input value (nil, string, bool,
// float64, json.Number, map or slice) against the declared type of col.
func CoerceValue(col ColumnSchema, raw any) (Value, error) {
	if raw == nil {
		return Null(), nil
	}
	kind := col.Kind()
	switch kind {
	case KindInteger:
		return coerceInteger(col.Name, raw)
	case KindDecimal:
		return coerceDecimal(col.Name, raw)
	case KindBool:
		return coerceBool(col.Name, raw)
	case KindTimestamp:
		s, ok := raw.(string)
		if !ok {
			return Value{}, ErrValidation("column %q expects a timestamp string", col.Name)
		}
		t, err := ParseTimestamp(s)
		if err != nil {
			return Value{}, ErrValidation("column %q: %v", col.Name, err)
		}
		return Timestamp(t), nil
	}
	return coerceText(raw)
}

func coerceInteger(name string, raw any) (Value, error) {
	switch v := raw.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return Integer(i), nil
		}
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= maxSafeInteger {
			return Integer(int64(v)), nil
		}
	case int64:
		return Integer(v), nil
	case int:
		return Integer(int64(v)), nil
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return Integer(i), nil
		}
	}
	return Value{}, ErrValidation("column %q expects an integer, got %v", name, raw)
}

func coerceDecimal(name string, raw any) (Value, error) {
	switch v := raw.(type) {
	case json.Number:
		return Decimal(v.String()), nil
	case float64:
		return Decimal(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case int64:
		return Decimal(strconv.FormatInt(v, 10)), nil
	case int:
		return Decimal(strconv.Itoa(v)), nil
	case string:
		s := strings.TrimSpace(v)
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return Decimal(s), nil
		}
	}
	return Value{}, ErrValidation("column %q expects a number, got %v", name, raw)
}

func coerceBool(name string, raw any) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Bool(v), nil
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return Bool(b), nil
		}
	case json.Number:
		if s := v.String(); s == "0" || s == "1" {
			return Bool(s == "1"), nil
		}
	case float64:
		if v == 0 || v == 1 {
			return Bool(v == 1), nil
		}
	}
	return Value{}, ErrValidation("column %q expects a boolean, got %v", name, raw)
}

func coerceText(raw any) (Value, error) {
	switch v := raw.(type) {
	case string:
		return Text(v), nil
	case json.Number:
		return Text(v.String()), nil
	case float64:
		return Text(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case bool:
		return Text(strconv.FormatBool(v)), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Value{}, ErrValidation("unsupported value %v", raw)
		}
		return Text(string(b)), nil
	}
}

// FromDriver converts a value scanned by database/sql into a Value, using the
// declared kind of the column it came from.
func FromDriver(kind Kind, src any) Value {
	switch v := src.(type) {
	case nil:
		return Null()
	case int64:
		if kind == KindDecimal {
			return Decimal(strconv.FormatInt(v, 10))
		}
		return Integer(v)
	case int32:
		return Integer(int64(v))
	case float64:
		return Decimal(strconv.FormatFloat(v, 'f', -1, 64))
	case float32:
		return Decimal(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case bool:
		return Bool(v)
	case time.Time:
		return Timestamp(v)
	case [16]byte:
		return Text(uuid.UUID(v).String())
	case []byte:
		return fromDriverText(kind, string(v))
	case string:
		return fromDriverText(kind, v)
	}
	return Text(fmt.Sprint(src))
}

func fromDriverText(kind Kind, s string) Value {
	switch kind {
	case KindDecimal:
		return Decimal(s)
	case KindInteger:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Integer(i)
		}
	}
	return Text(s)
}

// Field is one named cell of a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered mapping from column name to value.
type Record []Field

// Get returns the value stored under name.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// MarshalJSON renders the record as a JSON object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RecordFromInput resolves a decoded JSON object against schema. Keys that
// are not columns are returned in unknown instead of failing; values that do
// not fit their column are a ValidationError. The result follows schema order.
func RecordFromInput(schema TableSchema, input map[string]any) (rec Record, unknown []string, err error) {
	for _, col := range schema {
		raw, ok := input[col.Name]
		if !ok {
			continue
		}
		v, err := CoerceValue(col, raw)
		if err != nil {
			return nil, nil, err
		}
		rec = append(rec, Field{Name: col.Name, Value: v})
	}
	for name := range input {
		if _, ok := schema.Column(name); !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return rec, unknown, nil
}
