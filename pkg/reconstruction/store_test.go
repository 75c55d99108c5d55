package reconstruction

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"fibertrack/internal/models"
)

// TestNewStoreDecoding verifies that raw records are decoded into index space
func TestNewStoreDecoding(t *testing.T) {
	buf := []float32{
		2, 4, 6, 0, 1, 0, 0.25, 1.5, -1, 1,
		3, 5, 7, 0, 0, 1, 0.75, 2.5, 0, -1,
	}
	store, err := NewStore(buf, 2, [3]float64{2, 2, 2})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if store.Len() != 2 {
		t.Fatalf("Expected 2 particles, got %d", store.Len())
	}

	p, ok := store.Particle(0)
	if !ok {
		t.Fatal("Particle(0) not found")
	}
	if p.Position.X != 0.5 || p.Position.Y != 1.5 || p.Position.Z != 2.5 {
		t.Errorf("Expected position (0.5, 1.5, 2.5), got %v", p.Position)
	}
	if p.Direction.Y != 1 {
		t.Errorf("Expected direction (0, 1, 0), got %v", p.Direction)
	}
	if p.Capacity != 0.25 || p.Length != 1.5 {
		t.Errorf("Expected capacity 0.25 length 1.5, got %f %f", p.Capacity, p.Length)
	}
	if p.MID != models.NoLink || p.PID != 1 {
		t.Errorf("Expected links (-1, 1), got (%d, %d)", p.MID, p.PID)
	}
	if p.ID != 0 || p.Label != 0 || p.Inserted {
		t.Errorf("Expected fresh particle with ID 0, got %+v", p)
	}

	p, _ = store.Particle(1)
	if p.ID != 1 || p.MID != 0 || p.PID != models.NoLink {
		t.Errorf("Unexpected second particle %+v", p)
	}

	if _, ok := store.Particle(2); ok {
		t.Error("Particle(2) should not exist")
	}
}

// TestNewStoreIgnoresTrailingValues verifies that only pointCount records are decoded
func TestNewStoreIgnoresTrailingValues(t *testing.T) {
	buf := make([]float32, 25)
	buf[8], buf[9] = -1, -1
	store, err := NewStore(buf, 1, unitSpacing)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 particle, got %d", store.Len())
	}
}

// TestNewStoreLinkNormalization verifies that links outside the store are dropped
func TestNewStoreLinkNormalization(t *testing.T) {
	buf := makeBuffer([]record{
		{mID: 7, pID: 1},
		{mID: 0, pID: -3},
		{mID: 1.9, pID: float32(math.NaN())},
	})
	store, err := NewStore(buf, 3, unitSpacing)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	want := [][2]int{
		{models.NoLink, 1},
		{0, models.NoLink},
		{1, models.NoLink},
	}
	for i, p := range store.Particles() {
		if p.MID != want[i][0] || p.PID != want[i][1] {
			t.Errorf("Particle %d: links (%d, %d), want (%d, %d)", i, p.MID, p.PID, want[i][0], want[i][1])
		}
	}
	if store.NormalizedLinks() != 3 {
		t.Errorf("Expected 3 normalized links, got %d", store.NormalizedLinks())
	}
}

// TestNewStoreInvalidInput verifies that malformed input is rejected before decoding
func TestNewStoreInvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		buf        []float32
		pointCount int
		spacing    [3]float64
	}{
		{name: "negative count", buf: make([]float32, 10), pointCount: -1, spacing: unitSpacing},
		{name: "short buffer", buf: make([]float32, 19), pointCount: 2, spacing: unitSpacing},
		{name: "nil buffer", buf: nil, pointCount: 1, spacing: unitSpacing},
		{name: "zero spacing", buf: make([]float32, 10), pointCount: 1, spacing: [3]float64{1, 0, 1}},
		{name: "nan spacing", buf: make([]float32, 10), pointCount: 1, spacing: [3]float64{math.NaN(), 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.buf, tt.pointCount, tt.spacing)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("NewStore() error = %v, want ErrInvalidInput", err)
			}
			if store != nil {
				t.Error("NewStore() should not return a store on error")
			}
		})
	}
}

// TestParticlesReturnsCopy verifies that callers cannot mutate the store through Particles
func TestParticlesReturnsCopy(t *testing.T) {
	store, err := NewStore(makeBuffer(linearChain), 3, unitSpacing)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ps := store.Particles()
	ps[0].Label = 99

	if p, _ := store.Particle(0); p.Label != 0 {
		t.Errorf("Store was modified through Particles(), label = %d", p.Label)
	}
}
