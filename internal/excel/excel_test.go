package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"area-map/internal/calculator"
	"area-map/internal/models"
	"area-map/internal/store"
)

func TestReadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usaha.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"nama_usaha", "Jenis Usaha", "daerah", "lat", "lon", "review"},
		{"Warung Bu Sri", "Kuliner", "Sumbersari", "-8.1840", "113.6681", "15"},
		{"Toko Makmur", "Retail", "Kaliwates", "", "113.6750", "x"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	in, err := OpenFile(path)
	require.NoError(t, err)
	defer in.Close()

	records, err := ReadRecords(in, "")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Located)
	assert.Equal(t, 15, records[0].ReviewCount)
	assert.False(t, records[1].Located)
	assert.Equal(t, 0, records[1].ReviewCount)

	_, err = ReadRecords(in, "Missing")
	assert.Error(t, err)
}

func TestReadRecordsMissingColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"nama_usaha", "lat"}))
	_, err := ReadRecords(f, "Sheet1")
	assert.ErrorIs(t, err, store.ErrMissingColumns)
}

func TestWriteResult(t *testing.T) {
	center := models.Record{Name: "Pusat", Loc: models.Coordinate{Lat: -8.1844, Lon: 113.6681}, Located: true}
	records := []models.Record{
		{Name: "A", Category: "Kuliner", Region: "R1", Loc: models.Coordinate{Lat: -8.1840, Lon: 113.6681}, Located: true, ReviewCount: 3},
		{Name: "C", Category: "Retail", Region: "R2", Loc: models.Coordinate{Lat: -8.1845, Lon: 113.6685}, Located: true},
	}
	hits := calculator.WithinRadius(center.Loc, 500, records)
	rows := RowsFromHits(center, hits)
	require.Len(t, rows, 2)
	assert.Equal(t, 44, rows[0].Distance)
	assert.Equal(t, 45, rows[1].Distance)

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteResult(path, rows, "Hasil"))

	out, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, []string{"Hasil"}, out.GetSheetList())

	got, err := out.GetRows("Hasil")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Titik Pusat", got[0][0])
	assert.Equal(t, "A", got[1][3])
	assert.Equal(t, "44", got[1][9])
	assert.Equal(t, "C", got[2][3])
}
