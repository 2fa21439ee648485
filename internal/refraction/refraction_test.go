package refraction

import (
	"errors"
	"math"
	"testing"
)

const tol = 1e-9

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCorrectPoints3D_IdentityAtIndexOne(t *testing.T) {
	points := []Point{
		{X: 100, Y: 200, Z: -5},
		{X: 101.5, Y: 199.25, Z: -7.8},
		{X: 98.2, Y: 203.4, Z: -2.1},
	}
	depths := []float64{5, 7.8, 2.1}
	origins := []Point{
		{X: 100, Y: 150, Z: 500},
		{X: 120, Y: 210, Z: 480},
		{X: 90, Y: 190, Z: 510},
	}

	// Index 1 means no refraction: the correction must be the identity.
	got, gotDepths, err := CorrectPoints3D(points, depths, FromOrigins(origins), 1.0)
	if err != nil {
		t.Fatalf("CorrectPoints3D: %v", err)
	}

	for i := range points {
		if !almostEqual(got[i].X, points[i].X, tol) ||
			!almostEqual(got[i].Y, points[i].Y, tol) ||
			!almostEqual(got[i].Z, points[i].Z, tol) {
			t.Errorf("point %d changed: got %+v, want %+v", i, got[i], points[i])
		}
		if !almostEqual(gotDepths[i], depths[i], tol) {
			t.Errorf("depth %d changed: got %v, want %v", i, gotDepths[i], depths[i])
		}
	}
}

func TestCorrectPoints3D_KnownGeometry(t *testing.T) {
	// A 45 degree shot in the Y/Z plane over 10 m of apparent depth.
	points := []Point{{X: 50, Y: 60, Z: -10}}
	depths := []float64{10}
	shots := FromVectors([]Vector{{X: 0, Y: 1, Z: 1}})

	got, gotDepths, err := CorrectPoints3D(points, depths, shots, DefaultIndex)
	if err != nil {
		t.Fatalf("CorrectPoints3D: %v", err)
	}

	thetaApp := math.Pi / 4
	thetaTrue := math.Asin(math.Sin(thetaApp) / DefaultIndex)
	wantDepth := 10 * math.Cos(thetaApp) / (DefaultIndex * math.Cos(thetaTrue))
	wantShift := 10*math.Tan(thetaApp) - wantDepth*math.Tan(thetaTrue)

	if !almostEqual(gotDepths[0], wantDepth, tol) {
		t.Errorf("true depth = %v, want %v", gotDepths[0], wantDepth)
	}
	// The shot lies in the Y/Z plane, so the shift is entirely along Y.
	if !almostEqual(got[0].X, 50, tol) {
		t.Errorf("X = %v, want 50", got[0].X)
	}
	if !almostEqual(got[0].Y, 60+wantShift, tol) {
		t.Errorf("Y = %v, want %v", got[0].Y, 60+wantShift)
	}
	if !almostEqual(got[0].Z, -10+wantDepth-10, tol) {
		t.Errorf("Z = %v, want %v", got[0].Z, -10+wantDepth-10)
	}
	// Refraction always brings the true point shallower than apparent.
	if gotDepths[0] >= depths[0] {
		t.Errorf("true depth %v should be less than apparent %v", gotDepths[0], depths[0])
	}
}

func TestCorrectPoints3D_DiscreteMatchesWaveform(t *testing.T) {
	// The same physical shot expressed as an origin and as an explicit
	// vector must produce identical corrections.
	points := []Point{{X: 10, Y: 20, Z: -3}, {X: -4, Y: 7, Z: -12}}
	depths := []float64{3, 12}
	origins := []Point{{X: 40, Y: -35, Z: 400}, {X: -90, Y: 60, Z: 380}}

	vectors := make([]Vector, len(points))
	for i := range points {
		vectors[i] = Vector{
			X: origins[i].X - points[i].X,
			Y: origins[i].Y - points[i].Y,
			Z: origins[i].Z - points[i].Z,
		}
	}

	fromOrigins, depthsA, err := CorrectPoints3D(points, depths, FromOrigins(origins), DefaultIndex)
	if err != nil {
		t.Fatalf("discrete mode: %v", err)
	}
	fromVectors, depthsB, err := CorrectPoints3D(points, depths, FromVectors(vectors), DefaultIndex)
	if err != nil {
		t.Fatalf("waveform mode: %v", err)
	}

	for i := range points {
		if fromOrigins[i] != fromVectors[i] {
			t.Errorf("point %d: discrete %+v != waveform %+v", i, fromOrigins[i], fromVectors[i])
		}
		if depthsA[i] != depthsB[i] {
			t.Errorf("depth %d: discrete %v != waveform %v", i, depthsA[i], depthsB[i])
		}
	}
}

func TestCorrectPoints3D_InvalidShotGeometry(t *testing.T) {
	points := []Point{{X: 1, Y: 2, Z: -3}}
	depths := []float64{3}

	cases := []struct {
		name  string
		shots ShotGeometry
	}{
		{"nil geometry", nil},
		{"empty origins", FromOrigins(nil)},
		{"empty vectors", FromVectors(nil)},
		{"origin count mismatch", FromOrigins([]Point{{}, {}})},
		{"vector count mismatch", FromVectors([]Vector{{Z: 1}, {Z: 1}})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := CorrectPoints3D(points, depths, tc.shots, DefaultIndex)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("got %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCorrectPoints3D_DepthLengthMismatch(t *testing.T) {
	points := []Point{{X: 1}, {X: 2}}
	depths := []float64{1}
	_, _, err := CorrectPoints3D(points, depths, FromVectors([]Vector{{Z: 1}, {Z: 1}}), DefaultIndex)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestShotAngles_BearingMatchesAtan2(t *testing.T) {
	// The half-angle bearing formula must agree with atan2 away from the
	// branch cut and stay finite on it.
	vectors := []Vector{
		{X: 1, Y: 0, Z: 2},
		{X: -1, Y: 0, Z: 2},
		{X: 0.3, Y: -0.8, Z: 1.5},
		{X: -2, Y: 3, Z: 4},
		{X: 1e-6, Y: -1, Z: 0.5},
	}
	for _, v := range vectors {
		a := shotAngles(v, DefaultIndex)
		want := math.Atan2(v.X, v.Y)
		if !almostEqual(a.bearing, want, 1e-8) {
			t.Errorf("bearing(%+v) = %v, want %v", v, a.bearing, want)
		}
	}
}

func TestShotAngles_DegenerateBearing(t *testing.T) {
	// vx == 0 with vy == -hypot(vx,vy) zeroes the denominator; the result
	// must be finite, not NaN from 0/0.
	a := shotAngles(Vector{X: 0, Y: -1, Z: 1}, DefaultIndex)
	if math.IsNaN(a.bearing) {
		t.Fatal("bearing is NaN for vx=0, vy=-1")
	}
	if !almostEqual(a.bearing, math.Pi, tol) {
		t.Errorf("bearing = %v, want pi", a.bearing)
	}
}

func TestCorrectPoints3D_VerticalShot(t *testing.T) {
	// A perfectly vertical shot has no horizontal component at all; the
	// correction is purely vertical and must not produce NaN.
	points := []Point{{X: 5, Y: 6, Z: -8}}
	depths := []float64{8}
	got, gotDepths, err := CorrectPoints3D(points, depths, FromVectors([]Vector{{X: 0, Y: 0, Z: 1}}), DefaultIndex)
	if err != nil {
		t.Fatalf("CorrectPoints3D: %v", err)
	}
	if math.IsNaN(got[0].X) || math.IsNaN(got[0].Y) || math.IsNaN(got[0].Z) {
		t.Fatalf("vertical shot produced NaN: %+v", got[0])
	}
	if !almostEqual(got[0].X, 5, tol) || !almostEqual(got[0].Y, 6, tol) {
		t.Errorf("vertical shot moved horizontally: %+v", got[0])
	}
	if !almostEqual(gotDepths[0], 8/DefaultIndex, tol) {
		t.Errorf("true depth = %v, want %v", gotDepths[0], 8/DefaultIndex)
	}
}

func TestCorrectPoints3D_UnphysicalIndexPropagatesNaN(t *testing.T) {
	// With index < 1 a grazing shot pushes Snell's argument past 1. The
	// documented behaviour is NaN in the output, not an error.
	points := []Point{{X: 0, Y: 0, Z: -1}}
	depths := []float64{1}
	got, gotDepths, err := CorrectPoints3D(points, depths, FromVectors([]Vector{{X: 0, Y: 10, Z: 0.1}}), 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(gotDepths[0]) {
		t.Errorf("expected NaN true depth, got %v", gotDepths[0])
	}
	if !math.IsNaN(got[0].Y) {
		t.Errorf("expected NaN Y, got %v", got[0].Y)
	}
}

func TestCorrectVector_MagnitudeAndSnell(t *testing.T) {
	vectors := []Vector{
		{X: 1, Y: 2, Z: 5},
		{X: -0.4, Y: 0.9, Z: 3.2},
		{X: 0, Y: -1, Z: 4},
	}
	got := CorrectVector(vectors, DefaultIndex)
	if len(got) != len(vectors) {
		t.Fatalf("got %d vectors, want %d", len(got), len(vectors))
	}

	for i, v := range vectors {
		normApp := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
		normTrue := math.Sqrt(got[i].X*got[i].X + got[i].Y*got[i].Y + got[i].Z*got[i].Z)
		if !almostEqual(normTrue, normApp/DefaultIndex, 1e-9) {
			t.Errorf("vector %d: |true| = %v, want %v", i, normTrue, normApp/DefaultIndex)
		}

		// Snell's law on the reconstructed direction.
		sinApp := math.Hypot(v.X, v.Y) / normApp
		sinTrue := math.Hypot(got[i].X, got[i].Y) / normTrue
		if !almostEqual(sinTrue, sinApp/DefaultIndex, 1e-9) {
			t.Errorf("vector %d: sin(thetaTrue) = %v, want %v", i, sinTrue, sinApp/DefaultIndex)
		}

		// The horizontal bearing is unchanged by refraction.
		if sinApp > 1e-12 {
			wantBearing := math.Atan2(v.X, v.Y)
			gotBearing := math.Atan2(got[i].X, got[i].Y)
			if !almostEqual(gotBearing, wantBearing, 1e-9) {
				t.Errorf("vector %d: bearing = %v, want %v", i, gotBearing, wantBearing)
			}
		}
	}
}

func TestCorrectVector_AgreesWithPointCorrection(t *testing.T) {
	// Correcting a point through a shot vector and correcting the vector
	// itself must agree on the refracted direction.
	v := Vector{X: 0.7, Y: -1.3, Z: 4.1}
	a := shotAngles(v, DefaultIndex)
	got := CorrectVector([]Vector{v}, DefaultIndex)[0]

	gotTheta := math.Acos(got.Z / (math.Sqrt(got.X*got.X + got.Y*got.Y + got.Z*got.Z)))
	if !almostEqual(gotTheta, a.thetaTrue, 1e-9) {
		t.Errorf("incidence angle = %v, want %v", gotTheta, a.thetaTrue)
	}
	gotBearing := math.Atan2(got.X, got.Y)
	if !almostEqual(gotBearing, a.bearing, 1e-9) {
		t.Errorf("bearing = %v, want %v", gotBearing, a.bearing)
	}
}
