package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"area-map/internal/models"
)

// TimeLayout is how note timestamps are written, in local time.
const TimeLayout = "2006-01-02 15:04:05"

var noteHeader = []string{"timestamp", ColName, ColLat, ColLon, "catatan"}

// NoteFile is the append-only visit notes CSV.
type NoteFile struct {
	path string
	mu   sync.Mutex
}

func NewNoteFile(path string) *NoteFile {
	return &NoteFile{path: path}
}

func (n *NoteFile) Path() string { return n.path }

// NewNote builds a note for rec, copying its coordinates as they are now.
func NewNote(rec models.Record, text string, at time.Time) models.Note {
	note := models.Note{
		Timestamp:    at.Truncate(time.Second),
		BusinessName: rec.Name,
		Text:         text,
	}
	if pos, ok := rec.Position(); ok {
		note.Loc = pos
		note.Located = true
	}
	return note
}

// Ensure creates the file with just a header if it does not exist yet.
func (n *NoteFile) Ensure() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ensure()
}

func (n *NoteFile) ensure() error {
	if _, err := os.Stat(n.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	f, err := os.OpenFile(n.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return err
	}
	w := csv.NewWriter(f)
	w.Write(noteHeader)
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (n *NoteFile) Append(note models.Note) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.ensure(); err != nil {
		return fmt.Errorf("ensure notes file: %w", err)
	}
	f, err := os.OpenFile(n.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Write(noteRow(note))
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("append note: %w", err)
	}
	return f.Close()
}

// List returns every note, newest first. A missing file is an empty list.
func (n *NoteFile) List() ([]models.Note, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	f, err := os.Open(n.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Note{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}
	notes := make([]models.Note, 0, len(rows))
	if len(rows) == 0 {
		return notes, nil
	}
	idx := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		idx[h] = i
	}
	for _, row := range rows[1:] {
		notes = append(notes, parseNote(row, idx))
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Timestamp.After(notes[j].Timestamp)
	})
	return notes, nil
}

func (n *NoteFile) Recent(limit int) ([]models.Note, error) {
	notes, err := n.List()
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

// WriteCSV copies the notes file to w as stored. A missing file yields only
// the header.
func (n *NoteFile) WriteCSV(w io.Writer) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	f, err := os.Open(n.path)
	if errors.Is(err, fs.ErrNotExist) {
		cw := csv.NewWriter(w)
		cw.Write(noteHeader)
		cw.Flush()
		return cw.Error()
	}
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

func noteRow(note models.Note) []string {
	lat, lon := "", ""
	if note.Located {
		lat = strconv.FormatFloat(note.Loc.Lat, 'f', -1, 64)
		lon = strconv.FormatFloat(note.Loc.Lon, 'f', -1, 64)
	}
	return []string{note.Timestamp.Format(TimeLayout), note.BusinessName, lat, lon, note.Text}
}

func parseNote(row []string, idx map[string]int) models.Note {
	field := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	note := models.Note{
		BusinessName: field(ColName),
		Text:         field("catatan"),
	}
	if ts, err := time.ParseInLocation(TimeLayout, field("timestamp"), time.Local); err == nil {
		note.Timestamp = ts
	}
	lat, err1 := parseCoord(field(ColLat))
	lon, err2 := parseCoord(field(ColLon))
	if err1 == nil && err2 == nil {
		note.Loc = models.Coordinate{Lat: lat, Lon: lon}
		note.Located = true
	}
	return note
}
