package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/altihold/internal/analysis"
	"github.com/san-kum/altihold/internal/dynamo"
)

var (
	stateColumns      = []string{"z", "v", "e_i", "kp", "ki", "kd"}
	diagnosticColumns = []string{"e_z", "e_v", "u", "V", "Vdot"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes one row per sample: time, the six state components and,
// when d is not nil, the five diagnostic signals.
func WriteCSV(out io.Writer, traj *dynamo.Trajectory, d *analysis.Diagnostics) error {
	if d != nil && d.Len() != traj.Len() {
		return fmt.Errorf("diagnostic has %d samples, trajectory has %d", d.Len(), traj.Len())
	}

	w := csv.NewWriter(out)

	header := append([]string{"time"}, stateColumns...)
	if d != nil {
		header = append(header, diagnosticColumns...)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, len(header))
	for i, x := range traj.States {
		row = append(row[:0], formatFloat(traj.Times[i]))
		for _, val := range x {
			row = append(row, formatFloat(val))
		}
		if d != nil {
			for _, val := range []float64{d.EZ[i], d.EV[i], d.U[i], d.V[i], d.VDot[i]} {
				row = append(row, formatFloat(val))
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ReadCSV reads the time and state columns written by WriteCSV. Extra
// columns are ignored.
func ReadCSV(in io.Reader) (*dynamo.Trajectory, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("trajectory header: %w", err)
	}
	if len(header) < 1+dynamo.StateDim || header[0] != "time" {
		return nil, fmt.Errorf("trajectory header %v: want time and %d state columns", header, dynamo.StateDim)
	}

	traj := &dynamo.Trajectory{}
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 1+dynamo.StateDim {
			return nil, fmt.Errorf("trajectory line %d: %d columns", line, len(record))
		}

		vals := make([]float64, 1+dynamo.StateDim)
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("trajectory line %d column %q: %w", line, header[j], err)
			}
			vals[j] = v
		}

		traj.Times = append(traj.Times, vals[0])
		traj.States = append(traj.States, dynamo.State(vals[1:]))
	}

	return traj, nil
}
