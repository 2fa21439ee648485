// Package refraction corrects apparent bathymetric lidar geometry for the
// bending of light at the air/water interface.
//
// Airborne bathymetric lidar measures underwater returns through the water
// surface, so the recorded positions ("apparent" geometry) sit on the
// unrefracted continuation of the laser shot. Applying Snell's law with the
// shot direction and the apparent depth recovers the true underwater position.
// All routines are pure and operate on whole batches; they are safe to call
// concurrently on disjoint inputs.
package refraction

import (
	"errors"
	"fmt"
	"math"
)

// DefaultIndex is the refractive index of water relative to air used when no
// site-specific value is available.
const DefaultIndex = 1.333

// ErrInvalidInput reports ambiguous or missing shot geometry, or arrays whose
// lengths do not agree.
var ErrInvalidInput = errors.New("refraction: invalid input")

// Point is a position in a Cartesian projected reference frame.
type Point struct {
	X, Y, Z float64
}

// Vector is a laser-shot direction and magnitude in the same frame.
type Vector struct {
	X, Y, Z float64
}

// ShotGeometry supplies the apparent shot vector for each point. Exactly two
// implementations exist: discrete shot origins and full-waveform shot vectors.
// Modelling the choice as a closed variant keeps the "both present" and "both
// missing" states unrepresentable.
type ShotGeometry interface {
	apparentVectors(points []Point) ([]Vector, error)
}

type shotOrigins []Point

type shotVectors []Vector

// FromOrigins builds shot geometry from per-shot origin coordinates (discrete
// mode). The apparent vector for each point is origin minus apparent point.
func FromOrigins(origins []Point) ShotGeometry {
	return shotOrigins(origins)
}

// FromVectors builds shot geometry from explicit apparent shot vectors
// (full-waveform mode).
func FromVectors(vectors []Vector) ShotGeometry {
	return shotVectors(vectors)
}

func (s shotOrigins) apparentVectors(points []Point) ([]Vector, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: shot geometry ambiguous or missing", ErrInvalidInput)
	}
	if len(s) != len(points) {
		return nil, fmt.Errorf("%w: %d shot origins for %d points", ErrInvalidInput, len(s), len(points))
	}
	vects := make([]Vector, len(points))
	for i, p := range points {
		vects[i] = Vector{X: s[i].X - p.X, Y: s[i].Y - p.Y, Z: s[i].Z - p.Z}
	}
	return vects, nil
}

func (s shotVectors) apparentVectors(points []Point) ([]Vector, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: shot geometry ambiguous or missing", ErrInvalidInput)
	}
	if len(s) != len(points) {
		return nil, fmt.Errorf("%w: %d shot vectors for %d points", ErrInvalidInput, len(s), len(points))
	}
	return []Vector(s), nil
}

// angles holds the per-shot bearing and apparent/true incidence angles shared
// by the point and vector corrections.
type angles struct {
	bearing   float64
	thetaApp  float64
	thetaTrue float64
}

// shotAngles derives the horizontal bearing and the incidence angles of one
// apparent shot vector for a given refraction index.
//
// The bearing uses 2*atan(vx/(hypot(vx,vy)+vy)) rather than atan2(vx,vy) or
// atan(vx/vy): the half-angle form is continuous across the +/-pi branch cut
// that the naive forms hit at certain shot orientations. The denominator is
// zero only when vx == 0 and vy < 0, where the bearing's limit is pi.
func shotAngles(v Vector, index float64) angles {
	norm := math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)

	var bearing float64
	denom := math.Hypot(v.X, v.Y) + v.Y
	if denom == 0 {
		bearing = math.Pi
	} else {
		bearing = 2 * math.Atan(v.X/denom)
	}

	thetaApp := math.Acos(v.Z / norm)
	// Asin returns NaN when sin(thetaApp)/index leaves [-1,1]. That only
	// happens for unphysical index/geometry combinations; the NaN is
	// propagated to the caller rather than clamped or raised.
	thetaTrue := math.Asin(math.Sin(thetaApp) / index)

	return angles{bearing: bearing, thetaApp: thetaApp, thetaTrue: thetaTrue}
}

// CorrectPoints3D converts apparent underwater point positions to true
// positions. depthsApp pairs 1:1 with points and holds the vertical apparent
// distance from the water surface to each point. shots supplies the apparent
// shot vector for every point; index is the water refraction index.
//
// The returned slices are the same length as points. Unphysical geometry
// (Snell's law argument outside [-1,1]) yields NaN coordinates for the
// affected points and no error.
func CorrectPoints3D(points []Point, depthsApp []float64, shots ShotGeometry, index float64) ([]Point, []float64, error) {
	if shots == nil {
		return nil, nil, fmt.Errorf("%w: shot geometry ambiguous or missing", ErrInvalidInput)
	}
	if len(depthsApp) != len(points) {
		return nil, nil, fmt.Errorf("%w: %d depths for %d points", ErrInvalidInput, len(depthsApp), len(points))
	}

	vects, err := shots.apparentVectors(points)
	if err != nil {
		return nil, nil, err
	}

	truePoints := make([]Point, len(points))
	trueDepths := make([]float64, len(points))
	for i, p := range points {
		a := shotAngles(vects[i], index)

		depthTrue := depthsApp[i] * math.Cos(a.thetaApp) / (index * math.Cos(a.thetaTrue))
		distPlan := depthsApp[i]*math.Tan(a.thetaApp) - depthTrue*math.Tan(a.thetaTrue)

		truePoints[i] = Point{
			X: p.X + distPlan*math.Sin(a.bearing),
			Y: p.Y + distPlan*math.Cos(a.bearing),
			Z: p.Z + depthTrue - depthsApp[i],
		}
		trueDepths[i] = depthTrue
	}
	return truePoints, trueDepths, nil
}

// CorrectVector converts apparent full-waveform shot vectors to true
// underwater shot vectors. The true magnitude is the apparent magnitude
// divided by index; the direction is rebuilt from the refracted incidence
// angle and the unchanged horizontal bearing.
func CorrectVector(vectors []Vector, index float64) []Vector {
	trueVects := make([]Vector, len(vectors))
	for i, v := range vectors {
		a := shotAngles(v, index)
		normTrue := math.Sqrt(v.X*v.X+v.Y*v.Y+v.Z*v.Z) / index

		sinTrue := math.Sin(a.thetaTrue)
		trueVects[i] = Vector{
			X: normTrue * sinTrue * math.Sin(a.bearing),
			Y: normTrue * sinTrue * math.Cos(a.bearing),
			Z: normTrue * math.Cos(a.thetaTrue),
		}
	}
	return trueVects
}
