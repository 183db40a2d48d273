package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// TrajectoryExport is the JSON form of a sampled trajectory.
type TrajectoryExport struct {
	System string      `json:"system"`
	Dt     float64     `json:"dt"`
	Stride int         `json:"stride"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

func NewTrajectoryExport(traj *dynamo.Trajectory) TrajectoryExport {
	data := TrajectoryExport{
		System: traj.System(),
		Dt:     traj.Dt(),
		Stride: traj.Stride(),
		Times:  make([]float64, traj.Len()),
		States: make([][]float64, traj.Len()),
	}
	interval := traj.SampleInterval()
	traj.Each(func(i int, s dynamo.State) {
		data.Times[i] = float64(i) * interval
		data.States[i] = s.Clone()
	})
	return data
}

func ExportJSON(w io.Writer, trajs ...*dynamo.Trajectory) error {
	data := make([]TrajectoryExport, 0, len(trajs))
	for _, traj := range trajs {
		data = append(data, NewTrajectoryExport(traj))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteTrajectoryCSV writes a time,x0..x3 header followed by one row per
// sample. The caller flushes w.
func WriteTrajectoryCSV(w *csv.Writer, traj *dynamo.Trajectory) error {
	header := []string{"time"}
	for i := 0; i < dynamo.Dim; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	interval := traj.SampleInterval()
	var err error
	traj.Each(func(i int, s dynamo.State) {
		if err != nil {
			return
		}
		row := []string{strconv.FormatFloat(float64(i)*interval, 'f', 6, 64)}
		for _, val := range s {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		err = w.Write(row)
	})
	return err
}
