package cluster

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// twoBlobs returns two well-separated groups of six points each, plus one
// isolated point.
func twoBlobs() []Point {
	return []Point{
		// blob A around (0,0,0)
		{0, 0, 0}, {0.2, 0, 0}, {0, 0.2, 0}, {0.2, 0.2, 0}, {0.1, 0.1, 0.1}, {0, 0, 0.2},
		// blob B around (10,10,0)
		{10, 10, 0}, {10.2, 10, 0}, {10, 10.2, 0}, {10.2, 10.2, 0}, {10.1, 10.1, 0.1}, {10, 10, 0.2},
		// isolated
		{50, 50, 50},
	}
}

func TestLabels_TwoClustersAndNoise(t *testing.T) {
	labels, n := Labels(twoBlobs(), Params{Eps: 0.5, MinPts: 4})
	if n != 2 {
		t.Fatalf("found %d clusters, want 2", n)
	}

	want := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, Noise}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestLabels_AllNoise(t *testing.T) {
	points := []Point{{0, 0, 0}, {10, 0, 0}, {20, 0, 0}}
	labels, n := Labels(points, Params{Eps: 1, MinPts: 2})
	if n != 0 {
		t.Fatalf("found %d clusters, want 0", n)
	}
	for i, l := range labels {
		if l != Noise {
			t.Errorf("point %d labelled %d, want noise", i, l)
		}
	}
}

func TestLabels_Empty(t *testing.T) {
	labels, n := Labels(nil, DefaultParams())
	if labels != nil || n != 0 {
		t.Errorf("got labels=%v n=%d, want nil, 0", labels, n)
	}
}

func TestLabels_Deterministic(t *testing.T) {
	points := twoBlobs()
	first, _ := Labels(points, Params{Eps: 0.5, MinPts: 4})
	second, _ := Labels(points, Params{Eps: 0.5, MinPts: 4})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("labels not deterministic (-first +second):\n%s", diff)
	}
}

func TestLabels_BorderPointAdoption(t *testing.T) {
	// A point just inside eps of a dense blob but itself not core must end
	// up a border member of the cluster, not noise.
	points := []Point{
		{0, 0, 0}, {0.3, 0, 0}, {-0.3, 0, 0}, {0, 0.3, 0}, {0, -0.3, 0},
		{0.4, 0.3, 0}, // within eps of the centre but with too few neighbours to be core
	}
	labels, n := Labels(points, Params{Eps: 0.5, MinPts: 5})
	if n != 1 {
		t.Fatalf("found %d clusters, want 1", n)
	}
	if labels[5] != 0 {
		t.Errorf("border point labelled %d, want 0", labels[5])
	}
}

func TestDensity_SelfCounts(t *testing.T) {
	points := []Point{
		{0, 0, 0}, {0.5, 0, 0}, {0, 0.5, 0},
		{10, 10, 10},
	}
	counts := Density(points, nil, 1.0)
	want := []int{3, 3, 3, 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("density mismatch (-want +got):\n%s", diff)
	}
}

func TestDensity_ExplicitCorePoints(t *testing.T) {
	points := []Point{{0, 0, 0}, {0.5, 0, 0}, {2, 0, 0}}
	core := []Point{{0.25, 0, 0}}
	counts := Density(points, core, 1.0)
	if len(counts) != 1 || counts[0] != 2 {
		t.Errorf("counts = %v, want [2]", counts)
	}
}

func TestDensity_RadiusBoundaryInclusive(t *testing.T) {
	points := []Point{{0, 0, 0}, {1, 0, 0}}
	counts := Density(points, []Point{{0, 0, 0}}, 1.0)
	if counts[0] != 2 {
		t.Errorf("count = %d, want 2 (boundary is inclusive)", counts[0])
	}
}
