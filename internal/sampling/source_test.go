package sampling

import (
	"testing"
)

func TestSourceDeterminism(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
}

func TestDeriveIndependentOfDrawCount(t *testing.T) {
	a := New(7)
	b := New(7)
	for i := 0; i < 50; i++ {
		b.Float64()
	}

	da, db := a.Derive(3), b.Derive(3)
	for i := 0; i < 20; i++ {
		if x, y := da.Float64(), db.Float64(); x != y {
			t.Fatalf("derived draw %d differs: %v vs %v", i, x, y)
		}
	}
}

func TestDeriveDistinctStreams(t *testing.T) {
	root := New(1)
	s1, s2 := root.Derive(1), root.Derive(2)
	same := 0
	for i := 0; i < 20; i++ {
		if s1.Float64() == s2.Float64() {
			same++
		}
	}
	if same == 20 {
		t.Error("streams 1 and 2 produced identical sequences")
	}
}

func TestIntRange(t *testing.T) {
	s := New(5)
	for i := 0; i < 1000; i++ {
		v := s.IntRange(1, 7)
		if v < 1 || v >= 7 {
			t.Fatalf("IntRange(1, 7) = %d, out of range", v)
		}
	}
	if got := s.IntRange(3, 3); got != 3 {
		t.Errorf("IntRange(3, 3) = %d, want 3", got)
	}
}

func TestWeightedIndex(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    int
	}{
		{"single weight", []float64{1}, 0},
		{"only last is positive", []float64{0, 0, 5}, 2},
		{"all zero falls back", []float64{0, 0}, 0},
		{"empty falls back", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(9)
			for i := 0; i < 20; i++ {
				if got := s.WeightedIndex(tt.weights); got != tt.want {
					t.Fatalf("WeightedIndex(%v) = %d, want %d", tt.weights, got, tt.want)
				}
			}
		})
	}
}

func TestWeightedIndexFrequencies(t *testing.T) {
	s := New(11)
	counts := make([]int, 2)
	const n = 20000
	for i := 0; i < n; i++ {
		counts[s.WeightedIndex([]float64{0.25, 0.75})]++
	}
	share := float64(counts[1]) / n
	if share < 0.72 || share > 0.78 {
		t.Errorf("second bucket share = %.3f, want about 0.75", share)
	}
}

func TestSampleIndices(t *testing.T) {
	s := New(3)
	for trial := 0; trial < 200; trial++ {
		got := s.SampleIndices(10, 6)
		if len(got) != 6 {
			t.Fatalf("len = %d, want 6", len(got))
		}
		seen := make(map[int]bool)
		for _, v := range got {
			if v < 0 || v >= 10 {
				t.Fatalf("index %d out of range", v)
			}
			if seen[v] {
				t.Fatalf("duplicate index %d in %v", v, got)
			}
			seen[v] = true
		}
	}

	if got := s.SampleIndices(3, 10); len(got) != 3 {
		t.Errorf("k above n: len = %d, want 3", len(got))
	}
	if got := s.SampleIndices(0, 4); got != nil {
		t.Errorf("empty population: got %v, want nil", got)
	}
}

func TestClipAndRound(t *testing.T) {
	if got := Clip(1.5, 0, 1); got != 1 {
		t.Errorf("Clip(1.5, 0, 1) = %v", got)
	}
	if got := Clip(-1, 0.05, 0.97); got != 0.05 {
		t.Errorf("Clip(-1, 0.05, 0.97) = %v", got)
	}
	if got := Round(12.3456, 2); got != 12.35 {
		t.Errorf("Round(12.3456, 2) = %v", got)
	}
	if got := Round(27499.5, 0); got != 27500 {
		t.Errorf("Round(27499.5, 0) = %v", got)
	}
}
