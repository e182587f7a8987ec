// Package store keeps businesses and visit notes in flat CSV files.
package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"area-map/internal/models"
)

// Column names of the business CSV.
const (
	ColName     = "nama_usaha"
	ColCategory = "Jenis Usaha"
	ColRegion   = "daerah"
	ColLat      = "lat"
	ColLon      = "lon"
	ColReview   = "review"
)

var RequiredColumns = []string{ColName, ColCategory, ColRegion, ColLat, ColLon, ColReview}

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrMalformedCSV   = errors.New("malformed csv")
)

// ParseRecords reads a business CSV. Rows with unusable coordinates are kept
// but marked unlocated; an unusable review count becomes 0.
func ParseRecords(r io.Reader) ([]models.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(RequiredColumns, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedCSV, err)
	}
	idx, err := ColumnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedCSV, line, err)
		}
		field := func(col string) string {
			i := idx[col]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}
		records = append(records, BuildRecord(
			field(ColName), field(ColCategory), field(ColRegion),
			field(ColLat), field(ColLon), field(ColReview),
		))
	}
	return records, nil
}

// ColumnIndex maps every required column to its position in header.
func ColumnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return idx, nil
}

// BuildRecord coerces raw cell values into a Record.
func BuildRecord(name, category, region, lat, lon, review string) models.Record {
	rec := models.Record{
		Name:     strings.TrimSpace(name),
		Category: strings.TrimSpace(category),
		Region:   strings.TrimSpace(region),
	}
	latV, err1 := parseCoord(lat)
	lonV, err2 := parseCoord(lon)
	if err1 == nil && err2 == nil {
		rec.Loc = models.Coordinate{Lat: latV, Lon: lonV}
		rec.Located = true
	}
	rec.ReviewCount = parseCount(review)
	return rec
}

func parseCount(val string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil || math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= math.MaxInt {
		return math.MaxInt
	}
	return int(v)
}

func parseCoord(val string) (float64, error) {
	// Accept a decimal comma as well
	val = strings.TrimSpace(strings.ReplaceAll(val, ",", "."))
	if val == "" {
		return 0, fmt.Errorf("empty")
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", val)
	}
	return v, nil
}

func LoadRecords(path string) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := ParseRecords(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// ReplaceRecords overwrites the CSV at path with the content of r. The upload
// must parse as a business CSV; the old file is left alone otherwise.
func ReplaceRecords(path string, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read upload: %w", err)
	}
	records, err := ParseRecords(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".import-*.csv")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, err
	}
	return len(records), nil
}

// WriteRecords serializes records in the business CSV layout. Unlocated
// records get empty lat/lon cells.
func WriteRecords(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RequiredColumns); err != nil {
		return err
	}
	for _, r := range records {
		lat, lon := "", ""
		if r.Located {
			lat = strconv.FormatFloat(r.Loc.Lat, 'f', -1, 64)
			lon = strconv.FormatFloat(r.Loc.Lon, 'f', -1, 64)
		}
		row := []string{r.Name, r.Category, r.Region, lat, lon, strconv.Itoa(r.ReviewCount)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RecordFile is the loaded business CSV plus the modification time it was
// read at, so callers can reload when the file changes underneath them.
type RecordFile struct {
	path string

	mu      sync.RWMutex
	records []models.Record
	modTime time.Time
}

func OpenRecordFile(path string) (*RecordFile, error) {
	f := &RecordFile{path: path}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RecordFile) Path() string { return f.path }

// Records returns a copy of the current snapshot.
func (f *RecordFile) Records() []models.Record {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]models.Record(nil), f.records...)
}

func (f *RecordFile) ModTime() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.modTime
}

// Refresh reloads the file if its modification time moved. On a failed
// reload the previous snapshot stays in place.
func (f *RecordFile) Refresh() (bool, error) {
	st, err := os.Stat(f.path)
	if err != nil {
		return false, err
	}
	if st.ModTime().Equal(f.ModTime()) {
		return false, nil
	}
	if err := f.load(); err != nil {
		return false, err
	}
	return true, nil
}

// Reload reads the file again regardless of its modification time.
func (f *RecordFile) Reload() error {
	return f.load()
}

// Replace swaps the file for an uploaded CSV and reloads it.
func (f *RecordFile) Replace(r io.Reader) (int, error) {
	n, err := ReplaceRecords(f.path, r)
	if err != nil {
		return 0, err
	}
	if err := f.load(); err != nil {
		return 0, err
	}
	return n, nil
}

func (f *RecordFile) load() error {
	st, err := os.Stat(f.path)
	if err != nil {
		return err
	}
	records, err := LoadRecords(f.path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.records = records
	f.modTime = st.ModTime()
	f.mu.Unlock()
	return nil
}
