package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Canonicalize produces the canonical byte form of a record for digesting.
// Fields named in exclude are removed (top level only), remaining keys are
// sorted ascending by code point at every depth, strings are NFC normalized
// and numbers are reduced to one decimal representation. Two records with the
// same remaining content always produce byte-identical output, regardless of
// original field order or volatile-field values.
func Canonicalize(rec Record, exclude map[string]struct{}) ([]byte, error) {
	kept := make(map[string]any, len(rec))
	for name, val := range rec {
		if _, skip := exclude[name]; skip {
			continue
		}
		kept[name] = val
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, kept); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case string:
		return writeCanonicalString(buf, val)
	case []byte:
		return writeCanonicalString(buf, string(val))
	case time.Time:
		// Driver timestamps become one unambiguous form. Volatile timestamp
		// fields are expected to be excluded by configuration instead.
		return writeCanonicalString(buf, val.UTC().Format(time.RFC3339Nano))
	case map[string]any:
		return writeCanonicalObject(buf, val)
	case Record:
		return writeCanonicalObject(buf, val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	default:
		if num, ok := normalizeNumber(v); ok {
			buf.WriteString(num)
			return nil
		}
		return fmt.Errorf("unsupported type for canonical form: %T", v)
	}
}

// writeCanonicalObject serializes a mapping with keys sorted ascending by
// code point. Byte-wise comparison of UTF-8 strings matches code-point order,
// so sort.Strings is sufficient.
func writeCanonicalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonicalString(buf, k); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeCanonical(buf, obj[k]); err != nil {
			return fmt.Errorf("[%q]: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeCanonicalString writes a JSON string with NFC normalization and HTML
// escaping disabled, so that <, > and & serialize the same on every platform.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return err
	}

	// json.Encoder adds a trailing newline, remove it
	b := buf.Bytes()
	if len(b) > 0 && b[len(b)-1] == '\n' {
		buf.Truncate(len(b) - 1)
	}
	return nil
}

// normalizeNumber reduces every numeric representation drivers hand us to the
// same decimal string, so int64(1), float64(1.0) and json.Number("1.00")
// digest identically.
func normalizeNumber(v any) (string, bool) {
	var d decimal.Decimal
	switch n := v.(type) {
	case int:
		d = decimal.NewFromInt(int64(n))
	case int8:
		d = decimal.NewFromInt(int64(n))
	case int16:
		d = decimal.NewFromInt(int64(n))
	case int32:
		d = decimal.NewFromInt(int64(n))
	case int64:
		d = decimal.NewFromInt(n)
	case uint:
		d = decimal.NewFromUint64(uint64(n))
	case uint8:
		d = decimal.NewFromUint64(uint64(n))
	case uint16:
		d = decimal.NewFromUint64(uint64(n))
	case uint32:
		d = decimal.NewFromUint64(uint64(n))
	case uint64:
		d = decimal.NewFromUint64(n)
	case float32:
		d = decimal.NewFromFloat32(n)
	case float64:
		d = decimal.NewFromFloat(n)
	case json.Number:
		parsed, err := decimal.NewFromString(n.String())
		if err != nil {
			return "", false
		}
		d = parsed
	case decimal.Decimal:
		d = n
	default:
		return "", false
	}
	// decimal.String drops trailing zeros, which is exactly the
	// normalization we want.
	return d.String(), true
}
