package dispatch

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// euclideanOracle is a deterministic RoutingOracle stand-in used by tests:
// it answers Matrix with straight-line distances and Polyline by encoding
// the ordered points verbatim, so dispatch scenarios are reproducible
// without a live routing service.
type euclideanOracle struct {
	unreachable map[[2]float64]bool
}

func (o *euclideanOracle) Matrix(ctx context.Context, points []Point) ([][]float64, error) {
	n := len(points)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			if i == j {
				continue
			}
			if o.unreachable != nil && o.unreachable[[2]float64{points[i].Lon, points[i].Lat}] {
				out[i][j] = math.Inf(1)
				continue
			}
			dx := points[i].Lon - points[j].Lon
			dy := points[i].Lat - points[j].Lat
			out[i][j] = math.Sqrt(dx*dx + dy*dy)
		}
	}
	return out, nil
}

func (o *euclideanOracle) Polyline(ctx context.Context, orderedPoints []Point) (string, error) {
	return encodePolyline(orderedPoints), nil
}

func (o *euclideanOracle) Geocode(ctx context.Context, address string) (Point, error) {
	return Point{}, nil
}

func (o *euclideanOracle) Autocomplete(ctx context.Context, prefix string) ([]GeocodeResult, error) {
	return nil, nil
}

func TestEuclideanOracle_MatrixIsSymmetricStraightLineDistance(t *testing.T) {
	oracle := &euclideanOracle{}
	points := []Point{{Lon: 0, Lat: 0}, {Lon: 3, Lat: 4}}

	matrix, err := oracle.Matrix(context.Background(), points)
	require.NoError(t, err)

	assert.Equal(t, 0.0, matrix[0][0])
	assert.InDelta(t, 5.0, matrix[0][1], 1e-9)
	assert.Equal(t, matrix[0][1], matrix[1][0])
}

func TestEuclideanOracle_UnreachablePointReturnsInf(t *testing.T) {
	blocked := Point{Lon: 1, Lat: 1}
	oracle := &euclideanOracle{unreachable: map[[2]float64]bool{{blocked.Lon, blocked.Lat}: true}}
	points := []Point{blocked, {Lon: 0, Lat: 0}}

	matrix, err := oracle.Matrix(context.Background(), points)
	require.NoError(t, err)

	assert.True(t, math.IsInf(matrix[0][1], 1))
}

func TestEuclideanOracle_PolylineEncodesOrderedPoints(t *testing.T) {
	oracle := &euclideanOracle{}
	points := []Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}}

	encoded, err := oracle.Polyline(context.Background(), points)
	require.NoError(t, err)
	assert.Equal(t, encodePolyline(points), encoded)
}
