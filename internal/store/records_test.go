package store

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"area-map/internal/models"
)

const sampleCSV = `nama_usaha,Jenis Usaha,daerah,lat,lon,review
Warung Bu Sri,Kuliner,Sumbersari,-8.1840,113.6681,1520
Toko Makmur,Retail,Kaliwates,"-8,1900","113,6750",abc
Bengkel Jaya,Jasa,Patrang,,113.70,12
Kafe Senja,Kuliner,Kaliwates,-8.1845,not-a-number,
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"42", 42},
		{" 7 ", 7},
		{"12.9", 12},
		{"3000000000", 3000000000},
		{"-5", 0},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
		{"1e300", math.MaxInt},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCount(tt.in), tt.in)
	}
}

func TestParseRecords(t *testing.T) {
	records, err := ParseRecords(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, models.Record{
		Name: "Warung Bu Sri", Category: "Kuliner", Region: "Sumbersari",
		Loc: models.Coordinate{Lat: -8.1840, Lon: 113.6681}, Located: true, ReviewCount: 1520,
	}, records[0])

	assert.True(t, records[1].Located, "decimal comma is accepted")
	assert.InDelta(t, -8.19, records[1].Loc.Lat, 1e-12)
	assert.Equal(t, 0, records[1].ReviewCount)

	assert.False(t, records[2].Located)
	assert.Equal(t, 12, records[2].ReviewCount)

	assert.False(t, records[3].Located)
	assert.Equal(t, 0, records[3].ReviewCount)
}

func TestParseRecordsColumnOrderAndBOM(t *testing.T) {
	in := "\ufeffreview,lat,lon,daerah,Jenis Usaha,nama_usaha,extra\n7,1.5,2.5,R,C,N,x\n"
	records, err := ParseRecords(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "N", records[0].Name)
	assert.Equal(t, models.Coordinate{Lat: 1.5, Lon: 2.5}, records[0].Loc)
	assert.Equal(t, 7, records[0].ReviewCount)
}

func TestParseRecordsMissingColumns(t *testing.T) {
	_, err := ParseRecords(strings.NewReader("nama_usaha,lat,lon\nA,1,2\n"))
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "Jenis Usaha")
	assert.Contains(t, err.Error(), "review")

	_, err = ParseRecords(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestRecordFileRefresh(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", sampleCSV)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	f, err := OpenRecordFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Records(), 4)

	changed, err := f.Refresh()
	require.NoError(t, err)
	assert.False(t, changed)

	writeFile(t, dir, "data.csv", "nama_usaha,Jenis Usaha,daerah,lat,lon,review\nA,B,C,1,2,3\n")
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now()))
	changed, err = f.Refresh()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, f.Records(), 1)

	// a broken file keeps the last good snapshot
	writeFile(t, dir, "data.csv", "nope\n1\n")
	require.NoError(t, os.Chtimes(path, old, old))
	_, err = f.Refresh()
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Len(t, f.Records(), 1)
}

func TestRecordsSnapshotIsCopy(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.csv", sampleCSV)
	f, err := OpenRecordFile(path)
	require.NoError(t, err)

	rs := f.Records()
	rs[0].Name = "changed"
	assert.Equal(t, "Warung Bu Sri", f.Records()[0].Name)
}

func TestReplace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", sampleCSV)
	f, err := OpenRecordFile(path)
	require.NoError(t, err)

	_, err = f.Replace(strings.NewReader("name,x\n1,2\n"))
	require.ErrorIs(t, err, ErrMissingColumns)
	assert.Len(t, f.Records(), 4)
	b, _ := os.ReadFile(path)
	assert.Equal(t, sampleCSV, string(b))

	n, err := f.Replace(strings.NewReader("nama_usaha,Jenis Usaha,daerah,lat,lon,review\nA,B,C,1,2,3\nD,E,F,4,5,6\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.Records(), 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestOpenRecordFileMissing(t *testing.T) {
	_, err := OpenRecordFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteRecordsRoundTrip(t *testing.T) {
	in, err := ParseRecords(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, WriteRecords(&buf, in))
	out, err := ParseRecords(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseRecordsMalformed(t *testing.T) {
	_, err := ParseRecords(strings.NewReader("nama_usaha,Jenis Usaha,daerah,lat,lon,review\n\"A,B,C,1,2,3\n"))
	assert.ErrorIs(t, err, ErrMalformedCSV)
}
