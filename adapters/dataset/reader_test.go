package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Product_Category, Season ,Selling_Price,Quantity_Sold
Shirts,Summer,"1,250.00",2
Jeans,Winter,899.5,1
Shirts,All-Season,,3
`

func TestRead_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	tbl, err := NewReader(nil).Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Product_Category", "Season", "Selling_Price", "Quantity_Sold"}, tbl.Headers())
	assert.Equal(t, 3, tbl.Len())

	prices, err := tbl.Numeric("Selling_Price")
	require.NoError(t, err)
	assert.Equal(t, []float64{1250, 899.5}, prices)
}

func TestRead_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Season", "Selling_Price"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Summer", 1200}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Winter", 750.25}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := NewReader(nil).Read(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	groups, err := tbl.GroupNumeric("Season", "Selling_Price")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Winter", groups[1].Key)
	assert.InDelta(t, 750.25, groups[1].Values[0], 1e-9)
}

func TestRead_Errors(t *testing.T) {
	dir := t.TempDir()
	r := NewReader(nil)

	_, err := r.Read(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	headerOnly := filepath.Join(dir, "header.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("a,b\n"), 0o644))
	_, err = r.Read(headerOnly)
	assert.Error(t, err)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	_, err = r.Read(txt)
	assert.Error(t, err)
}
