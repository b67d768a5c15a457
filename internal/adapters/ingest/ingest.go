// Package ingest decodes recorded telemetry logs into samples.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/okian/tackline/internal/domain/model"
)

// Format names a log encoding.
type Format string

// Supported formats.
const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat resolves a format name, a file extension or a MIME type.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		s = mt
	}
	switch strings.TrimPrefix(s, ".") {
	case "csv", "text/csv", "application/csv":
		return CSV, nil
	case "json", "application/json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Read decodes r in the given format.
func Read(r io.Reader, f Format) ([]model.Sample, error) {
	switch f {
	case CSV:
		return ReadCSV(r)
	case JSON:
		return ReadJSON(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// setter writes a parsed value into a sample field.
type setter func(s *model.Sample, v float64)

// columns maps lower-cased header names to sample fields.
var columns = map[string]setter{}

func alias(set setter, names ...string) {
	for _, n := range names {
		columns[n] = set
	}
}

func init() {
	alias(func(s *model.Sample, v float64) { s.TWA = &v }, "twa")
	alias(func(s *model.Sample, v float64) { s.TWS = &v }, "tws")
	alias(func(s *model.Sample, v float64) { s.TWD = &v }, "twd")
	alias(func(s *model.Sample, v float64) { s.Speed = &v }, "speed", "bsp", "sog")
	alias(func(s *model.Sample, v float64) { s.VMG = &v }, "vmg")
	alias(func(s *model.Sample, v float64) { s.Hdg = &v }, "hdg", "heading")
	alias(func(s *model.Sample, v float64) { s.ROT = &v }, "rot")
	alias(func(s *model.Sample, v float64) { s.Lon = &v }, "lon", "lng", "longitude")
	alias(func(s *model.Sample, v float64) { s.Lat = &v }, "lat", "latitude")
	alias(func(s *model.Sample, v float64) { s.OT = &v }, "ot", "elapsed")
	alias(func(s *model.Sample, v float64) { s.TargetSpeed = &v }, "targetspeed", "tgtspd", "target_speed")
	alias(func(s *model.Sample, v float64) { s.TargetAngle = &v }, "targetangle", "tgttwa", "target_angle")
}

var timeColumns = []string{"t", "utc", "time", "timestamp"}

// ReadCSV decodes a CSV log with a header row. Unknown columns are
// ignored; empty cells leave the field absent.
func ReadCSV(r io.Reader) ([]model.Sample, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	timeIdx := -1
	sets := make([]setter, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if timeIdx < 0 && isTimeColumn(name) {
			timeIdx = i
			continue
		}
		sets[i] = columns[name]
	}
	if timeIdx < 0 {
		return nil, ErrNoTimeColumn
	}

	var out []model.Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var s model.Sample
		if s.T, err = ParseTime(rec[timeIdx]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for i, cell := range rec {
			cell = strings.TrimSpace(cell)
			if sets[i] == nil || cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) {
				return nil, fmt.Errorf("line %d, column %q: %w", line, header[i], ErrBadValue)
			}
			sets[i](&s, v)
		}
		out = append(out, s)
	}
	return checked(out)
}

func isTimeColumn(name string) bool {
	for _, c := range timeColumns {
		if name == c {
			return true
		}
	}
	return false
}

// ReadJSON decodes a JSON array of samples using the model field names.
func ReadJSON(r io.Reader) ([]model.Sample, error) {
	var raw []struct {
		model.Sample
		T json.RawMessage `json:"t"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("%w: %w", ErrBadValue, err)
	}

	out := make([]model.Sample, len(raw))
	for i, rs := range raw {
		t, err := parseJSONTime(rs.T)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		out[i] = rs.Sample
		out[i].T = t
	}
	return checked(out)
}

func parseJSONTime(raw json.RawMessage) (time.Time, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return ParseTime(str)
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err == nil {
		return fromEpoch(secs), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrBadTimestamp, string(raw))
}

// ParseTime accepts RFC 3339 timestamps (with optional fractional
// seconds) and numeric epoch seconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(secs) && !math.IsInf(secs, 0) {
		return fromEpoch(secs), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

func fromEpoch(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
}

// checked rejects empty and unsorted logs. Equal timestamps are allowed.
func checked(samples []model.Sample) ([]model.Sample, error) {
	if len(samples) == 0 {
		return nil, ErrEmpty
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].T.Before(samples[i-1].T) {
			return nil, fmt.Errorf("%w: sample %d at %s", ErrUnsorted, i, samples[i].T.Format(time.RFC3339Nano))
		}
	}
	return samples, nil
}
