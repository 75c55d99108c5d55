package reconstruction

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics summarises a reconstruction result
type Metrics struct {
	// Fibers is the number of accepted fibers
	Fibers int

	// PoolPoints is the size of the shared point pool, orphans included
	PoolPoints int

	// ReferencedPoints is the number of pool points used by accepted fibers
	ReferencedPoints int

	// OrphanedPoints is the number of pool points left over from discarded chains
	OrphanedPoints int

	// MeanLength and StdDevLength describe the accepted fiber lengths
	MeanLength   float64
	StdDevLength float64

	// MinLength and MaxLength bound the accepted fiber lengths
	MinLength float64
	MaxLength float64

	// TotalLength is the summed length of all accepted fibers
	TotalLength float64

	// MeanPoints is the average number of points per accepted fiber
	MeanPoints float64
}

// ComputeMetrics calculates length and point statistics for pd.
// An empty result yields zero length statistics.
func ComputeMetrics(pd *PolyData) Metrics {
	m := Metrics{
		Fibers:           len(pd.Fibers),
		PoolPoints:       len(pd.Points),
		ReferencedPoints: pd.ReferencedPoints(),
	}
	m.OrphanedPoints = m.PoolPoints - m.ReferencedPoints

	if m.Fibers == 0 {
		return m
	}

	lengths := make([]float64, m.Fibers)
	counts := make([]float64, m.Fibers)
	for i, f := range pd.Fibers {
		lengths[i] = f.Length
		counts[i] = float64(len(f.PointIDs))
	}

	m.MeanLength, m.StdDevLength = stat.MeanStdDev(lengths, nil)
	if m.Fibers == 1 {
		// sample standard deviation is undefined for a single fiber
		m.StdDevLength = 0
	}
	m.MinLength = floats.Min(lengths)
	m.MaxLength = floats.Max(lengths)
	m.TotalLength = pd.TotalLength()
	m.MeanPoints = stat.Mean(counts, nil)

	return m
}
