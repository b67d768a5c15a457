package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/okian/tackline/internal/domain/model"
)

// csvHeader is the column order written by WriteCSV.
var csvHeader = []string{
	"t", "twa", "tws", "twd", "speed", "vmg", "hdg", "rot",
	"lon", "lat", "ot", "targetspeed", "targetangle",
}

// WriteCSV encodes samples with a header row that ReadCSV accepts.
// Absent fields are written as empty cells.
func WriteCSV(w io.Writer, samples []model.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(csvHeader))
	for _, s := range samples {
		row[0] = s.T.UTC().Format(time.RFC3339Nano)
		for i, v := range []*float64{
			s.TWA, s.TWS, s.TWD, s.Speed, s.VMG, s.Hdg, s.ROT,
			s.Lon, s.Lat, s.OT, s.TargetSpeed, s.TargetAngle,
		} {
			row[i+1] = cell(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write sample: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
