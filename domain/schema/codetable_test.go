package schema

import (
	"testing"

	"salesdash/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerate_EncodeIsIdempotent(t *testing.T) {
	table, err := Enumerate("season", "Winter", "All-Season", "Summer")
	require.NoError(t, err)

	for _, label := range table.Labels() {
		first, err := table.Encode(label)
		require.NoError(t, err)
		second, err := table.Encode(label)
		require.NoError(t, err)
		assert.Equal(t, first, second, "encoding %q twice should agree", label)
	}

	code, err := table.Encode("Summer")
	require.NoError(t, err)
	assert.Equal(t, 2, code)
}

func TestNewCodeTable_RejectsCollisions(t *testing.T) {
	_, err := NewCodeTable("payment_method", []CodeEntry{{"Card", 0}, {"UPI", 1}, {"Cash", 1}})
	assert.ErrorIs(t, err, core.ErrDuplicateCode)

	_, err = NewCodeTable("payment_method", []CodeEntry{{"Card", 0}, {"Card", 1}})
	assert.ErrorIs(t, err, core.ErrDuplicateLabel)

	_, err = NewCodeTable("payment_method", []CodeEntry{{"Card", -1}})
	assert.ErrorIs(t, err, core.ErrInvalidSchema)

	_, err = NewCodeTable("payment_method", nil)
	assert.ErrorIs(t, err, core.ErrInvalidSchema)
}

func TestEncode_UnknownLabel(t *testing.T) {
	table, err := Enumerate("gender", "Male", "Female", "Unisex")
	require.NoError(t, err)

	_, err = table.Encode("Other")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownLabel)
	assert.Contains(t, err.Error(), "gender")
}

func TestIntegerRange(t *testing.T) {
	table, err := IntegerRange("product_category", 0, 9)
	require.NoError(t, err)
	assert.Equal(t, 10, table.Len())
	assert.Equal(t, "0", table.First())

	code, err := table.Encode("7")
	require.NoError(t, err)
	assert.Equal(t, 7, code)

	_, err = IntegerRange("bad", 3, 1)
	assert.ErrorIs(t, err, core.ErrInvalidSchema)
}

func TestEntriesIsACopy(t *testing.T) {
	table, err := Enumerate("size", "S", "M")
	require.NoError(t, err)

	entries := table.Entries()
	entries[0].Label = "XS"

	assert.Equal(t, []string{"S", "M"}, table.Labels())
}
