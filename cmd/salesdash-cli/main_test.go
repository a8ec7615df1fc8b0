package main

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/domain/schema"
)

func TestParseAssignments(t *testing.T) {
	in, err := parseAssignments([]string{"cost_price=500", " brand = Nike ", "season=All season", "empty="})
	require.NoError(t, err)
	assert.Equal(t, schema.Inputs{
		"cost_price": "500",
		"brand":      "Nike",
		"season":     "All season",
		"empty":      "",
	}, in)

	for _, bad := range []string{"cost_price", "=5"} {
		_, err := parseAssignments([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestSampleCommand(t *testing.T) {
	cmd := newSampleCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--rows", "5", "--drop", "Product_Category"})
	require.NoError(t, cmd.Execute())

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.NotContains(t, records[0], "Product_Category")
	assert.Contains(t, records[0], "Selling_Price")
}
