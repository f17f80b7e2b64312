package recordmodel_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/keymodel"
	"github.com/jsonlt/jsonlt-go/internal/recordmodel"
)

func scalarSpec(t *testing.T, field string) keymodel.Specifier {
	t.Helper()
	spec, err := keymodel.NewScalarSpecifier(field)
	require.NoError(t, err)
	return spec
}

func TestIsTombstone(t *testing.T) {
	obj, err := canon.ParseLine(`{"id":"a","$deleted":true}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	require.True(t, recordmodel.IsTombstone(obj))

	obj, err = canon.ParseLine(`{"id":"a"}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	require.False(t, recordmodel.IsTombstone(obj))

	obj, err = canon.ParseLine(`{"id":"a","$deleted":false}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	require.False(t, recordmodel.IsTombstone(obj))
}

func TestValidateRecordRejectsDollarField(t *testing.T) {
	obj, err := canon.ParseLine(`{"id":"a","$extra":1}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	err = recordmodel.ValidateRecord(obj, scalarSpec(t, "id"))
	require.Error(t, err)
}

func TestValidateRecordRequiresKeyField(t *testing.T) {
	obj, err := canon.ParseLine(`{"name":"a"}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	err = recordmodel.ValidateRecord(obj, scalarSpec(t, "id"))
	require.Error(t, err)
}

func TestExtractKeyScalar(t *testing.T) {
	obj, err := canon.ParseLine(`{"id":"alice","role":"admin"}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	key, err := recordmodel.ExtractKey(obj, scalarSpec(t, "id"))
	require.NoError(t, err)
	s, ok := key.Str()
	require.True(t, ok)
	require.Equal(t, "alice", s)
}

func TestExtractKeyCompound(t *testing.T) {
	spec, err := keymodel.NewCompoundSpecifier([]string{"tenant", "id"})
	require.NoError(t, err)
	obj, err := canon.ParseLine(`{"tenant":"acme","id":2}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	key, err := recordmodel.ExtractKey(obj, spec)
	require.NoError(t, err)
	require.Equal(t, keymodel.KindTuple, key.Kind())
}

func TestBuildTombstoneRoundTrip(t *testing.T) {
	spec := scalarSpec(t, "id")
	key := keymodel.NewString("alice")
	tombstone, err := recordmodel.BuildTombstone(key, spec)
	require.NoError(t, err)
	require.True(t, recordmodel.IsTombstone(tombstone))

	extracted, err := recordmodel.ExtractKey(tombstone, spec)
	require.NoError(t, err)
	require.True(t, keymodel.Equal(key, extracted))
}

func TestValidateTombstoneRequiresExactTrue(t *testing.T) {
	spec := scalarSpec(t, "id")
	obj, err := canon.ParseLine(`{"id":"a","$deleted":1}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	err = recordmodel.ValidateTombstone(obj, spec)
	require.Error(t, err)
}

func TestRecordSize(t *testing.T) {
	obj, err := canon.ParseLine(`{"id":"a"}`, canon.DefaultMaxDepth)
	require.NoError(t, err)
	size, err := recordmodel.RecordSize(obj)
	require.NoError(t, err)
	require.Equal(t, len(`{"id":"a"}`), size)
}
