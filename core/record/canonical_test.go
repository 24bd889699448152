package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_FieldOrderIndependent(t *testing.T) {
	// Build the same logical record through two different insertion orders.
	a := Record{}
	a["name"] = "chair"
	a["id"] = 1
	a["tags"] = []any{"x", "y"}

	b := Record{}
	b["tags"] = []any{"x", "y"}
	b["id"] = 1
	b["name"] = "chair"

	ca, err := Canonicalize(a, nil)
	require.NoError(t, err)
	cb, err := Canonicalize(b, nil)
	require.NoError(t, err)

	assert.Equal(t, ca, cb)
	assert.Equal(t, `{"id":1,"name":"chair","tags":["x","y"]}`, string(ca))
}

func TestCanonicalize_NestedKeysSorted(t *testing.T) {
	rec := Record{
		"outer": map[string]any{
			"z": 1,
			"a": map[string]any{"c": 2, "b": 3},
		},
	}

	canonical, err := Canonicalize(rec, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"outer":{"a":{"b":3,"c":2},"z":1}}`, string(canonical))
}

func TestCanonicalize_ExcludedFields(t *testing.T) {
	exclude := map[string]struct{}{"updated_at": {}}

	r1 := Record{"a": 1, "updated_at": "2026-01-01T00:00:00Z"}
	r2 := Record{"a": 1, "updated_at": "2026-02-02T00:00:00Z"}

	d1, err := DigestRecord(r1, exclude)
	require.NoError(t, err)
	d2, err := DigestRecord(r2, exclude)
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
}

func TestCanonicalize_ExclusionIsTopLevelOnly(t *testing.T) {
	exclude := map[string]struct{}{"updated_at": {}}

	// A nested field sharing an excluded name stays part of the content.
	r1 := Record{"meta": map[string]any{"updated_at": "t1"}}
	r2 := Record{"meta": map[string]any{"updated_at": "t2"}}

	d1, err := DigestRecord(r1, exclude)
	require.NoError(t, err)
	d2, err := DigestRecord(r2, exclude)
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
}

func TestCanonicalize_NumberUnification(t *testing.T) {
	tests := []struct {
		name string
		val  any
	}{
		{"Int", 1},
		{"Int64", int64(1)},
		{"Uint32", uint32(1)},
		{"Float64", 1.0},
		{"JSONNumber", json.Number("1.00")},
	}

	want, err := Canonicalize(Record{"v": 1}, nil)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(Record{"v": tt.val}, nil)
			require.NoError(t, err)
			assert.Equal(t, string(want), string(got))
		})
	}
}

func TestCanonicalize_StringNormalization(t *testing.T) {
	// é composed (U+00E9) vs decomposed (e + U+0301)
	composed := Record{"name": "café"}
	decomposed := Record{"name": "café"}

	c1, err := Canonicalize(composed, nil)
	require.NoError(t, err)
	c2, err := Canonicalize(decomposed, nil)
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	// No HTML escaping
	c3, err := Canonicalize(Record{"v": "<a&b>"}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"v":"<a&b>"}`, string(c3))
}

func TestCanonicalize_BytesAndTimes(t *testing.T) {
	fromBytes, err := Canonicalize(Record{"v": []byte("abc")}, nil)
	require.NoError(t, err)
	fromString, err := Canonicalize(Record{"v": "abc"}, nil)
	require.NoError(t, err)
	assert.Equal(t, fromString, fromBytes)

	// Same instant in different zones canonicalizes identically.
	loc := time.FixedZone("UTC+2", 2*60*60)
	utc := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	zoned := utc.In(loc)

	t1, err := Canonicalize(Record{"ts": utc}, nil)
	require.NoError(t, err)
	t2, err := Canonicalize(Record{"ts": zoned}, nil)
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
}

func TestCanonicalize_NullAndEmpty(t *testing.T) {
	c, err := Canonicalize(Record{"v": nil}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"v":null}`, string(c))

	// Empty record and all-excluded record collapse to the same form;
	// equal digests here are a valid match, not an error.
	empty, err := DigestRecord(Record{}, nil)
	require.NoError(t, err)
	allExcluded, err := DigestRecord(Record{"a": 1}, map[string]struct{}{"a": {}})
	require.NoError(t, err)
	assert.Equal(t, empty, allExcluded)
}

func TestCanonicalize_UnsupportedType(t *testing.T) {
	_, err := Canonicalize(Record{"f": func() {}}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")

	// Nested failures carry the path
	_, err = Canonicalize(Record{"outer": map[string]any{"bad": make(chan int)}}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestDigestRecord(t *testing.T) {
	d1, err := DigestRecord(Record{"a": 1}, nil)
	require.NoError(t, err)
	d2, err := DigestRecord(Record{"a": 2}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
	assert.Len(t, string(d1), 64) // hex sha256
}

func TestID(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		id, err := ID(Record{"id": "abc"}, "id")
		assert.NoError(t, err)
		assert.Equal(t, "abc", id)
	})

	t.Run("NumericFormsAgree", func(t *testing.T) {
		a, err := ID(Record{"id": int64(7)}, "id")
		assert.NoError(t, err)
		b, err := ID(Record{"id": json.Number("7.0")}, "id")
		assert.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := ID(Record{"a": 1}, "id")
		assert.Error(t, err)
	})

	t.Run("Null", func(t *testing.T) {
		_, err := ID(Record{"id": nil}, "id")
		assert.Error(t, err)
	})
}
