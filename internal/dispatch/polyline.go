package dispatch

import "strings"

// encodePolyline implements the Google polyline encoding algorithm at
// precision 1e-5 — the wire format ORS's directions endpoint returns. It is
// hand-written because the algorithm is a small, deterministic wire-format
// transform with no library concern to delegate to.
func encodePolyline(points []Point) string {
	var b strings.Builder
	var prevLat, prevLon int64

	for _, p := range points {
		lat := round(p.Lat * 1e5)
		lon := round(p.Lon * 1e5)

		encodeSignedNumber(&b, lat-prevLat)
		encodeSignedNumber(&b, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return b.String()
}

// decodePolyline is the inverse of encodePolyline, used by tests to assert
// the round-trip property.
func decodePolyline(encoded string) []Point {
	var points []Point
	var lat, lon int64
	i := 0

	for i < len(encoded) {
		dlat, next := decodeSignedNumber(encoded, i)
		i = next
		lat += dlat

		dlon, next2 := decodeSignedNumber(encoded, i)
		i = next2
		lon += dlon

		points = append(points, Point{Lat: float64(lat) / 1e5, Lon: float64(lon) / 1e5})
	}

	return points
}

func round(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return int64(v - 0.5)
}

func encodeSignedNumber(b *strings.Builder, num int64) {
	shifted := num << 1
	if num < 0 {
		shifted = ^shifted
	}
	encodeNumber(b, shifted)
}

func encodeNumber(b *strings.Builder, num int64) {
	for num >= 0x20 {
		b.WriteByte(byte((0x20 | (num & 0x1f)) + 63))
		num >>= 5
	}
	b.WriteByte(byte(num + 63))
}

func decodeSignedNumber(encoded string, start int) (int64, int) {
	result := int64(0)
	shift := uint(0)
	i := start

	for {
		b := int64(encoded[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), i
	}
	return result >> 1, i
}
