package excel

import (
	"fmt"
	"math"

	"area-map/internal/models"
	"area-map/internal/store"

	"github.com/xuri/excelize/v2"
)

func OpenFile(filename string) (*excelize.File, error) {
	return excelize.OpenFile(filename)
}

// ReadRecords reads businesses from a sheet whose first row carries the same
// column names as the CSV store. An empty sheet name means the first sheet.
func ReadRecords(f *excelize.File, sheetName string) ([]models.Record, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, store.ErrMissingColumns)
	}
	idx, err := store.ColumnIndex(rows[0])
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	var records []models.Record
	for _, row := range rows[1:] {
		cell := func(col string) string {
			i := idx[col]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}
		if len(row) == 0 {
			continue // blank line
		}
		records = append(records, store.BuildRecord(
			cell(store.ColName), cell(store.ColCategory), cell(store.ColRegion),
			cell(store.ColLat), cell(store.ColLon), cell(store.ColReview),
		))
	}
	return records, nil
}

// RowsFromHits flattens a radius query for export.
func RowsFromHits(center models.Record, hits []models.RadiusHit) []models.ResultRow {
	rows := make([]models.ResultRow, 0, len(hits))
	for _, h := range hits {
		rows = append(rows, models.ResultRow{
			CenterName: center.Name,
			CenterLat:  center.Loc.Lat,
			CenterLon:  center.Loc.Lon,
			Name:       h.Record.Name,
			Category:   h.Record.Category,
			Region:     h.Record.Region,
			Lat:        h.Record.Loc.Lat,
			Lon:        h.Record.Loc.Lon,
			Reviews:    h.Record.ReviewCount,
			Distance:   int(math.Round(h.Distance)),
		})
	}
	return rows
}

func WriteResult(path string, data []models.ResultRow, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Use Stream Writer for performance
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	headers := []interface{}{
		"Titik Pusat", "Pusat Lat", "Pusat Lon",
		"Nama Usaha", "Jenis Usaha", "Daerah", "Lat", "Lon", "Review",
		"Jarak (m)",
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}

	for i, r := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.CenterName, r.CenterLat, r.CenterLon,
			r.Name, r.Category, r.Region, r.Lat, r.Lon, r.Reviews,
			r.Distance,
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}

	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	return f.SaveAs(path)
}
