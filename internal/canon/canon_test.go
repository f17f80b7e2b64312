package canon_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
)

func TestParseLineRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"simple object", `{"a":1,"b":"two"}`},
		{"nested", `{"a":{"b":[1,2,3]}}`},
		{"unicode preserved", `{"name":"héllo"}`},
		{"negative and zero", `{"a":-5,"b":0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obj, err := canon.ParseLine(tc.text, canon.DefaultMaxDepth)
			require.NoError(t, err)
			out, err := canon.Serialize(obj)
			require.NoError(t, err)
			require.Equal(t, tc.text, out)
		})
	}
}

func TestParseLineRejectsDuplicateKeys(t *testing.T) {
	_, err := canon.ParseLine(`{"a":1,"a":2}`, canon.DefaultMaxDepth)
	require.Error(t, err)
}

func TestParseLineRejectsNonObject(t *testing.T) {
	_, err := canon.ParseLine(`[1,2,3]`, canon.DefaultMaxDepth)
	require.Error(t, err)

	_, err = canon.ParseLine(`"just a string"`, canon.DefaultMaxDepth)
	require.Error(t, err)
}

func TestParseLineRejectsTrailingContent(t *testing.T) {
	_, err := canon.ParseLine(`{"a":1} garbage`, canon.DefaultMaxDepth)
	require.Error(t, err)
}

func TestParseLineRejectsExcessiveDepth(t *testing.T) {
	text := `{"a":`
	for i := 0; i < 70; i++ {
		text += `{"b":`
	}
	text += "1"
	for i := 0; i < 70; i++ {
		text += "}"
	}
	text += "}"
	_, err := canon.ParseLine(text, canon.DefaultMaxDepth)
	require.Error(t, err)
}

func TestSerializeSortsKeysByCodePoint(t *testing.T) {
	obj := jsonval.Object{"b": jsonval.Int64(1), "a": jsonval.Int64(2), "Z": jsonval.Int64(3)}
	out, err := canon.Serialize(obj)
	require.NoError(t, err)
	require.Equal(t, `{"Z":3,"a":2,"b":1}`, out)
}

func TestSerializeEscapesControlAndSpecialChars(t *testing.T) {
	obj := jsonval.Object{"s": "line1\nline2\ttab\"quote\\back"}
	out, err := canon.Serialize(obj)
	require.NoError(t, err)
	require.Equal(t, `{"s":"line1\nline2\ttab\"quote\\back"}`, out)
}

func TestSerializeDeterministic(t *testing.T) {
	a := jsonval.Object{"x": jsonval.Int64(1), "y": "two"}
	b := jsonval.Object{"y": "two", "x": jsonval.Int64(1)}
	outA, err := canon.Serialize(a)
	require.NoError(t, err)
	outB, err := canon.Serialize(b)
	require.NoError(t, err)
	require.Equal(t, outA, outB)
}

func TestParseLineRejectsInvalidJSON(t *testing.T) {
	_, err := canon.ParseLine(`{"a":}`, canon.DefaultMaxDepth)
	require.Error(t, err)
}
