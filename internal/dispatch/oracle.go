package dispatch

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/dispatcher/cvrp-engine/pkg/errors"

	"github.com/dispatcher/cvrp-engine/internal/common/cache"
	"github.com/dispatcher/cvrp-engine/internal/common/monitoring"
)

// inf represents an unreachable edge in a distance matrix.
var inf = math.Inf(1)

// Point is a (longitude, latitude) pair as used by the routing oracle.
type Point struct {
	Lon float64
	Lat float64
}

// GeocodeResult is one match returned by autocomplete.
type GeocodeResult struct {
	Label string
	Coord Point
}

// RoutingOracle provides all-pairs road distances for a location set and a
// polyline for an ordered sequence, plus geocoding used by out-of-scope
// CRUD endpoints. Unreachable pairs are represented as +Inf distances.
type RoutingOracle interface {
	Matrix(ctx context.Context, points []Point) ([][]float64, error)
	Polyline(ctx context.Context, orderedPoints []Point) (string, error)
	Geocode(ctx context.Context, address string) (Point, error)
	Autocomplete(ctx context.Context, prefix string) ([]GeocodeResult, error)
}

// orsDirectionsRequest/Response and orsMatrixRequest/Response mirror the
// OpenRouteService wire contract.
type orsDirectionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type orsDirectionsResponse struct {
	Routes []struct {
		Geometry string `json:"geometry"`
	} `json:"routes"`
}

type orsMatrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
	Units     string      `json:"units"`
}

type orsMatrixResponse struct {
	Distances [][]*float64 `json:"distances"`
}

// ORSClient is a thin net/http client for OpenRouteService. No Go SDK for
// ORS exists in the ecosystem this module draws from, so the wire protocol
// is implemented directly against the documented JSON contract.
type ORSClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewORSClient builds a client rate-limited to protect the configured API
// key's quota (40 requests/minute is ORS's free-tier default).
func NewORSClient(baseURL, apiKey string) *ORSClient {
	return &ORSClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(1500*time.Millisecond), 2),
	}
}

func (c *ORSClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody []byte
	var err error
	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oracle transport error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("oracle returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode oracle response: %w", err)
		}
	}
	return nil
}

// Matrix fetches all-pairs road distances for a point set, enforcing
// the 50-point hard cap before calling out.
func (c *ORSClient) Matrix(ctx context.Context, points []Point) ([][]float64, error) {
	if len(points) > MatrixPointLimit {
		return nil, apperrors.NewTooManyPointsError(len(points), MatrixPointLimit)
	}

	locations := make([][]float64, len(points))
	for i, p := range points {
		locations[i] = []float64{p.Lon, p.Lat}
	}

	var resp orsMatrixResponse
	err := c.do(ctx, http.MethodPost, "/v2/matrix/driving-car", orsMatrixRequest{
		Locations: locations,
		Metrics:   []string{"distance"},
		Units:     "km",
	}, &resp)
	if err != nil {
		return nil, apperrors.NewRoutingOracleError(err)
	}

	out := make([][]float64, len(points))
	for i, row := range resp.Distances {
		out[i] = make([]float64, len(row))
		for j, d := range row {
			if d == nil {
				out[i][j] = inf
			} else {
				out[i][j] = *d * 1000 // km -> metres
			}
		}
	}
	return out, nil
}

// Polyline requests a driving-car route over the ordered points and
// returns its encoded geometry.
func (c *ORSClient) Polyline(ctx context.Context, orderedPoints []Point) (string, error) {
	coords := make([][]float64, len(orderedPoints))
	for i, p := range orderedPoints {
		coords[i] = []float64{p.Lon, p.Lat}
	}

	var resp orsDirectionsResponse
	err := c.do(ctx, http.MethodPost, "/v2/directions/driving-car", orsDirectionsRequest{Coordinates: coords}, &resp)
	if err != nil {
		return "", apperrors.NewRoutingOracleError(err)
	}
	if len(resp.Routes) == 0 {
		return "", apperrors.NewRoutingOracleError(fmt.Errorf("oracle returned no route"))
	}
	return resp.Routes[0].Geometry, nil
}

// Geocode resolves a free-text address to coordinates.
func (c *ORSClient) Geocode(ctx context.Context, address string) (Point, error) {
	var resp struct {
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	path := fmt.Sprintf("/geocode/search?text=%s", url.QueryEscape(address))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return Point{}, apperrors.NewRoutingOracleError(err)
	}
	if len(resp.Features) == 0 {
		return Point{}, apperrors.NewRoutingOracleError(fmt.Errorf("no geocode match for %q", address))
	}
	coord := resp.Features[0].Geometry.Coordinates
	return Point{Lon: coord[0], Lat: coord[1]}, nil
}

// Autocomplete suggests address completions for a prefix.
func (c *ORSClient) Autocomplete(ctx context.Context, prefix string) ([]GeocodeResult, error) {
	var resp struct {
		Features []struct {
			Properties struct {
				Label string `json:"label"`
			} `json:"properties"`
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	path := fmt.Sprintf("/geocode/autocomplete?text=%s", url.QueryEscape(prefix))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, apperrors.NewRoutingOracleError(err)
	}

	results := make([]GeocodeResult, 0, len(resp.Features))
	for _, f := range resp.Features {
		if len(f.Geometry.Coordinates) < 2 {
			continue
		}
		results = append(results, GeocodeResult{
			Label: f.Properties.Label,
			Coord: Point{Lon: f.Geometry.Coordinates[0], Lat: f.Geometry.Coordinates[1]},
		})
	}
	return results, nil
}


// CachedOracle wraps a RoutingOracle with a Redis-backed cross-request
// cache keyed by the ordered point set, plus hit/miss metrics, covering the
// cross-request layer the in-memory per-run DistanceMatrixCache doesn't.
type CachedOracle struct {
	inner   RoutingOracle
	cache   *cache.RedisCache
	metrics *monitoring.CacheMetrics
	ttl     time.Duration
}

// NewCachedOracle wraps inner with Redis caching for Matrix calls.
func NewCachedOracle(inner RoutingOracle, redisCache *cache.RedisCache, metrics *monitoring.CacheMetrics, ttl time.Duration) *CachedOracle {
	return &CachedOracle{inner: inner, cache: redisCache, metrics: metrics, ttl: ttl}
}

func (o *CachedOracle) Matrix(ctx context.Context, points []Point) ([][]float64, error) {
	key := matrixCacheKey(points)

	var cached [][]float64
	if err := o.cache.Get(ctx, key, &cached); err == nil {
		o.metrics.RecordHit()
		return cached, nil
	} else if err != cache.ErrCacheMiss {
		o.metrics.RecordError()
	} else {
		o.metrics.RecordMiss()
	}

	result, err := o.inner.Matrix(ctx, points)
	if err != nil {
		return nil, err
	}

	_ = o.cache.Set(ctx, key, result, o.ttl)
	return result, nil
}

func (o *CachedOracle) Polyline(ctx context.Context, orderedPoints []Point) (string, error) {
	return o.inner.Polyline(ctx, orderedPoints)
}

func (o *CachedOracle) Geocode(ctx context.Context, address string) (Point, error) {
	return o.inner.Geocode(ctx, address)
}

func (o *CachedOracle) Autocomplete(ctx context.Context, prefix string) ([]GeocodeResult, error) {
	return o.inner.Autocomplete(ctx, prefix)
}

// matrixCacheKey hashes the points in request order; the matrix result is
// positional, so reordered point sets must not share an entry.
func matrixCacheKey(points []Point) string {
	h := sha1.New()
	for _, p := range points {
		fmt.Fprintf(h, "%.6f,%.6f;", p.Lon, p.Lat)
	}
	return "oracle:matrix:" + hex.EncodeToString(h.Sum(nil))
}

// DistanceMatrixCache is the in-memory per-run cache: an immutable
// (from_id, to_id) -> metres dictionary populated once
// per GA run. Misses are a programmer error and fail loudly.
type DistanceMatrixCache struct {
	index map[uint64]int
	data  [][]float64
}

// NewDistanceMatrixCache builds the cache from a location ordering and the
// oracle's matrix result.
func NewDistanceMatrixCache(locations []Location, matrix [][]float64) *DistanceMatrixCache {
	index := make(map[uint64]int, len(locations))
	for i, l := range locations {
		index[l.ID] = i
	}
	return &DistanceMatrixCache{index: index, data: matrix}
}

// Distance returns the cached distance between two location ids, panicking
// if either id is unknown to this cache — an unknown id-pair is a
// programmer error, not a recoverable condition.
func (c *DistanceMatrixCache) Distance(fromID, toID uint64) float64 {
	i, ok := c.index[fromID]
	if !ok {
		panic(fmt.Sprintf("dispatch: distance matrix cache miss for id %d", fromID))
	}
	j, ok := c.index[toID]
	if !ok {
		panic(fmt.Sprintf("dispatch: distance matrix cache miss for id %d", toID))
	}
	return c.data[i][j]
}

