package reconstruction

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"fibertrack/internal/models"
)

// TestComputeMetrics checks the summary statistics of a small result
func TestComputeMetrics(t *testing.T) {
	pd := &PolyData{
		Points: make([]r3.Vec, 7),
		Fibers: []models.Fiber{
			{PointIDs: []int{0, 1}, Length: 2},
			{PointIDs: []int{2, 3, 4, 5}, Length: 4},
		},
	}

	m := ComputeMetrics(pd)

	if m.Fibers != 2 || m.PoolPoints != 7 || m.ReferencedPoints != 6 || m.OrphanedPoints != 1 {
		t.Errorf("Unexpected counts %+v", m)
	}
	if m.MeanLength != 3 {
		t.Errorf("Expected mean length 3, got %f", m.MeanLength)
	}
	if math.Abs(m.StdDevLength-math.Sqrt2) > 1e-9 {
		t.Errorf("Expected std dev sqrt(2), got %f", m.StdDevLength)
	}
	if m.MinLength != 2 || m.MaxLength != 4 || m.TotalLength != 6 {
		t.Errorf("Expected min 2 max 4 total 6, got %f %f %f", m.MinLength, m.MaxLength, m.TotalLength)
	}
	if m.MeanPoints != 3 {
		t.Errorf("Expected 3 points per fiber, got %f", m.MeanPoints)
	}
}

// TestComputeMetricsSingleFiber verifies the spread of a single fiber is zero
func TestComputeMetricsSingleFiber(t *testing.T) {
	pd, _, _ := reconstruct(t, linearChain, 0)
	m := ComputeMetrics(pd)

	if m.StdDevLength != 0 {
		t.Errorf("Expected std dev 0, got %f", m.StdDevLength)
	}
	if m.MeanLength != 2 || m.MinLength != 2 || m.MaxLength != 2 {
		t.Errorf("Expected all length statistics to be 2, got %+v", m)
	}
}

// TestComputeMetricsEmpty verifies that an empty result has zero statistics
func TestComputeMetricsEmpty(t *testing.T) {
	pd, _, _ := reconstruct(t, linearChain, 100)
	m := ComputeMetrics(pd)

	if m.Fibers != 0 || m.MeanLength != 0 || m.MaxLength != 0 {
		t.Errorf("Expected zero statistics, got %+v", m)
	}
	if m.OrphanedPoints != 3 {
		t.Errorf("Expected 3 orphaned points, got %d", m.OrphanedPoints)
	}
}

// TestComputeMetricsTotalLength verifies the total matches the fibers' summed length
func TestComputeMetricsTotalLength(t *testing.T) {
	records := []record{
		{x: 0, mID: -1, pID: 1},
		{x: 1, mID: 0, pID: 2},
		{x: 2, mID: 1, pID: -1},
		{x: 0, y: 5, mID: -1, pID: 4},
		{x: 1, y: 5, mID: 3, pID: -1},
	}
	pd, _, _ := reconstruct(t, records, 0)
	m := ComputeMetrics(pd)

	if m.TotalLength != pd.TotalLength() || math.Abs(m.TotalLength-3) > 1e-9 {
		t.Errorf("Expected total length 3, got %f (polydata %f)", m.TotalLength, pd.TotalLength())
	}
}
