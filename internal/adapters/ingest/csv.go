// Package ingest turns delimited telemetry tables into frames for replay.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/okian/pitwall/internal/domain/telemetry"
)

// Header is the column layout written by WriteCSV.
var Header = []string{"speed_mph", "rpm", "throttle_pct", "brake_pct", "lat_g"}

// columns holds the sniffed index of each recognized field, -1 when absent.
type columns struct {
	speed, rpm, throttle, brake, latG int
}

func sniff(header []string) columns {
	c := columns{speed: -1, rpm: -1, throttle: -1, brake: -1, latG: -1}
	first := func(idx *int, match func(string) bool) {
		for i, h := range header {
			if match(h) {
				*idx = i
				return
			}
		}
	}
	contains := func(part string) func(string) bool {
		return func(h string) bool { return strings.Contains(h, part) }
	}
	first(&c.speed, contains("speed"))
	first(&c.rpm, contains("rpm"))
	first(&c.throttle, contains("throttle"))
	first(&c.brake, contains("brake"))
	first(&c.latG, func(h string) bool {
		return strings.Contains(h, "lat") && strings.Contains(h, "g")
	})
	return c
}

// ParseCSV reads a header row followed by data rows. Columns are matched by
// case-insensitive substring; unmatched fields are 0 and longitudinal G is
// always 0. Rows shorter than the header, or holding a non-numeric value in a
// recognized column, are dropped. Gear is recomputed from speed and rpm.
// A read error after the header ends the table; the rows read before it are
// kept, and the error is returned only when none survived.
func ParseCSV(r io.Reader) ([]telemetry.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	cols := sniff(header)

	var frames []telemetry.Frame
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if len(frames) > 0 {
				break
			}
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		if len(rec) < len(header) {
			continue
		}
		f, ok := frameFrom(rec, cols)
		if !ok {
			continue
		}
		frames = append(frames, f)
	}

	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return frames, nil
}

func frameFrom(rec []string, c columns) (telemetry.Frame, bool) {
	var f telemetry.Frame
	ok := true
	field := func(idx int) float64 {
		if idx < 0 || !ok {
			return 0
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			ok = false
			return 0
		}
		return v
	}
	f.Speed = field(c.speed)
	f.RPM = field(c.rpm)
	f.Throttle = field(c.throttle)
	f.Brake = field(c.brake)
	f.LatG = field(c.latG)
	if !ok {
		return telemetry.Frame{}, false
	}
	f.Gear = telemetry.Gear(f.Speed, f.RPM)
	return f, true
}

// WriteCSV writes frames under Header so ParseCSV reads them back.
func WriteCSV(w io.Writer, frames []telemetry.Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	for _, f := range frames {
		row := []string{format(f.Speed), format(f.RPM), format(f.Throttle), format(f.Brake), format(f.LatG)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
