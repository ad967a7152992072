package dispatch

import (
	"math"
	"math/rand"
)

const (
	clusterSeed         = 42
	clusterRestarts     = 10
	clusterMaxIter      = 300
	clusterShiftEpsilon = 1e-4
)

type centroid struct {
	x, y float64
}

// Cluster2D partitions orders into K clusters by 2-D Euclidean coordinate
// similarity using k-means++ initialisation, 10 restarts seeded
// deterministically, and a fixed iteration/convergence cap.
func Cluster2D(orders []Order, k int) []Cluster {
	if k <= 0 || len(orders) == 0 {
		return nil
	}
	if k > len(orders) {
		k = len(orders)
	}

	rng := rand.New(rand.NewSource(clusterSeed))

	var bestAssignment []int
	bestInertia := math.Inf(1)

	for restart := 0; restart < clusterRestarts; restart++ {
		centroids := kmeansPlusPlusInit(orders, k, rng)
		assignment, inertia := runKMeans(orders, centroids)
		if inertia < bestInertia {
			bestInertia = inertia
			bestAssignment = assignment
		}
	}

	clusters := make([]Cluster, k)
	for i, order := range orders {
		c := bestAssignment[i]
		clusters[c].Orders = append(clusters[c].Orders, order)
	}
	return clusters
}

func kmeansPlusPlusInit(orders []Order, k int, rng *rand.Rand) []centroid {
	centroids := make([]centroid, 0, k)

	first := orders[rng.Intn(len(orders))]
	centroids = append(centroids, centroid{x: first.Location.X, y: first.Location.Y})

	for len(centroids) < k {
		distSq := make([]float64, len(orders))
		var total float64
		for i, o := range orders {
			distSq[i] = nearestCentroidDistSq(o.Location, centroids)
			total += distSq[i]
		}

		if total == 0 {
			// All remaining points coincide with an existing centroid; pick
			// arbitrarily to keep k distinct slots filled.
			centroids = append(centroids, centroid{x: orders[rng.Intn(len(orders))].Location.X, y: orders[rng.Intn(len(orders))].Location.Y})
			continue
		}

		target := rng.Float64() * total
		var cum float64
		chosen := len(orders) - 1
		for i, d := range distSq {
			cum += d
			if cum >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, centroid{x: orders[chosen].Location.X, y: orders[chosen].Location.Y})
	}

	return centroids
}

func nearestCentroidDistSq(loc Location, centroids []centroid) float64 {
	best := math.Inf(1)
	for _, c := range centroids {
		dx := loc.X - c.x
		dy := loc.Y - c.y
		d := dx*dx + dy*dy
		if d < best {
			best = d
		}
	}
	return best
}

// runKMeans iterates Lloyd's algorithm to convergence or the iteration cap,
// returning the final point->cluster assignment and total inertia.
func runKMeans(orders []Order, centroids []centroid) ([]int, float64) {
	k := len(centroids)
	assignment := make([]int, len(orders))

	for iter := 0; iter < clusterMaxIter; iter++ {
		// Assignment step.
		for i, o := range orders {
			best := 0
			bestDist := math.Inf(1)
			for c, cen := range centroids {
				dx := o.Location.X - cen.x
				dy := o.Location.Y - cen.y
				d := dx*dx + dy*dy
				if d < bestDist {
					bestDist = d
					best = c
				}
			}
			assignment[i] = best
		}

		// Update step.
		sums := make([]centroid, k)
		counts := make([]int, k)
		for i, o := range orders {
			c := assignment[i]
			sums[c].x += o.Location.X
			sums[c].y += o.Location.Y
			counts[c]++
		}

		var maxShift float64
		newCentroids := make([]centroid, k)
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				newCentroids[c] = centroids[c] // empty cluster keeps its centroid
				continue
			}
			nc := centroid{x: sums[c].x / float64(counts[c]), y: sums[c].y / float64(counts[c])}
			dx := nc.x - centroids[c].x
			dy := nc.y - centroids[c].y
			shift := math.Sqrt(dx*dx + dy*dy)
			if shift > maxShift {
				maxShift = shift
			}
			newCentroids[c] = nc
		}
		centroids = newCentroids

		if maxShift < clusterShiftEpsilon {
			break
		}
	}

	var inertia float64
	for i, o := range orders {
		c := assignment[i]
		dx := o.Location.X - centroids[c].x
		dy := o.Location.Y - centroids[c].y
		inertia += dx*dx + dy*dy
	}

	return assignment, inertia
}
