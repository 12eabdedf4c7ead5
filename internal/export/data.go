package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/san-kum/algoviz/internal/algo"
	"github.com/san-kum/algoviz/internal/storage"
	"github.com/san-kum/algoviz/internal/trace"
)

type Document struct {
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Algorithm algo.Algorithm `json:"algorithm"`
	Input     []int          `json:"input"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Stats     trace.Stats    `json:"stats"`
	Steps     []trace.Step   `json:"steps"`
}

func NewDocument(run *storage.Run) Document {
	doc := Document{
		ID:        run.ID,
		Name:      run.Name,
		Algorithm: run.Algorithm,
		Input:     run.Input,
		Stats:     trace.Summarize(run.Steps),
		Steps:     run.Steps,
	}
	if !run.Timestamp.IsZero() {
		ts := run.Timestamp
		doc.Timestamp = &ts
	}
	if doc.Input == nil {
		doc.Input = []int{}
	}
	if doc.Steps == nil {
		doc.Steps = []trace.Step{}
	}
	return doc
}

func JSON(w io.Writer, run *storage.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(run))
}

// CSV writes one row per step: index, then the ';'-joined array, comparing
// and swapped fields.
func CSV(w io.Writer, steps trace.Trace) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "array", "comparing", "swapped"}); err != nil {
		return err
	}
	for i, st := range steps {
		row := trace.EncodeRow(st)
		if err := cw.Write([]string{strconv.Itoa(i), row[0], row[1], row[2]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
