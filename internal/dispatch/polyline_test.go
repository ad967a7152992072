package dispatch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolylineRoundTrip(t *testing.T) {
	points := []Point{
		{Lon: -120.2, Lat: 38.5},
		{Lon: -120.95, Lat: 40.7},
		{Lon: -126.453, Lat: 43.252},
	}

	encoded := encodePolyline(points)
	require.NotEmpty(t, encoded)

	decoded := decodePolyline(encoded)
	require.Len(t, decoded, len(points))

	for i, p := range points {
		assert.InDelta(t, p.Lon, decoded[i].Lon, 1e-5)
		assert.InDelta(t, p.Lat, decoded[i].Lat, 1e-5)
	}
}

func TestPolylineEmpty(t *testing.T) {
	assert.Equal(t, "", encodePolyline(nil))
	assert.Empty(t, decodePolyline(""))
}

func TestPolylineSinglePoint(t *testing.T) {
	encoded := encodePolyline([]Point{{Lon: 1, Lat: 2}})
	decoded := decodePolyline(encoded)
	require.Len(t, decoded, 1)
	assert.True(t, math.Abs(decoded[0].Lon-1) < 1e-5)
	assert.True(t, math.Abs(decoded[0].Lat-2) < 1e-5)
}
