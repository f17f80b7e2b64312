package header_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/header"
)

func TestIsHeaderLine(t *testing.T) {
	obj, err := canon.ParseLine(`{"$jsonlt":{"version":1}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	require.True(t, header.IsHeaderLine(obj))

	obj, err = canon.ParseLine(`{"id":1}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	require.False(t, header.IsHeaderLine(obj))
}

func TestParseScalarKey(t *testing.T) {
	obj, err := canon.ParseLine(`{"$jsonlt":{"version":1,"key":"id"}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	h, err := header.Parse(obj)
	require.NoError(t, err)
	require.True(t, h.HasKey)
	require.True(t, h.Key.IsScalar())
	require.Equal(t, []string{"id"}, h.Key.Fields())
}

func TestParseCompoundKeyArray(t *testing.T) {
	obj, err := canon.ParseLine(`{"$jsonlt":{"version":1,"key":["tenant","id"]}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	h, err := header.Parse(obj)
	require.NoError(t, err)
	require.False(t, h.Key.IsScalar())
	require.Equal(t, []string{"tenant", "id"}, h.Key.Fields())
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	obj, err := canon.ParseLine(`{"$jsonlt":{"version":2}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	_, err = header.Parse(obj)
	require.Error(t, err)
}

func TestParseRejectsBothSchemaFields(t *testing.T) {
	obj, err := canon.ParseLine(`{"$jsonlt":{"version":1,"$schema":"https://example.com/s.json","schema":{}}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	_, err = header.Parse(obj)
	require.Error(t, err)
}

func TestParseRejectsUnknownDollarField(t *testing.T) {
	obj, err := canon.ParseLine(`{"$jsonlt":{"version":1,"$bogus":true}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	_, err = header.Parse(obj)
	require.Error(t, err)
}

func TestParseRejectsOversizedCompoundKey(t *testing.T) {
	fields := `["f1","f2","f3","f4","f5","f6","f7","f8","f9","f10","f11","f12","f13","f14","f15","f16","f17"]`
	obj, err := canon.ParseLine(`{"$jsonlt":{"version":1,"key":`+fields+`}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	_, err = header.Parse(obj)
	require.Error(t, err)
}

func TestParseRejectsDuplicateCompoundFields(t *testing.T) {
	obj, err := canon.ParseLine(`{"$jsonlt":{"version":1,"key":["id","id"]}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	_, err = header.Parse(obj)
	require.Error(t, err)
}

func TestSerializeRoundTrip(t *testing.T) {
	obj, err := canon.ParseLine(`{"$jsonlt":{"key":"id","meta":{"owner":"team-a"},"version":1}}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	h, err := header.Parse(obj)
	require.NoError(t, err)

	out, err := header.Serialize(h)
	require.NoError(t, err)
	require.Equal(t, `{"$jsonlt":{"key":"id","meta":{"owner":"team-a"},"version":1}}`, out)
}
