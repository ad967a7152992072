package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCluster2D_KZeroReturnsNil(t *testing.T) {
	orders := []Order{order(1, 1), order(2, 1)}
	assert.Nil(t, Cluster2D(orders, 0))
}

func TestCluster2D_NoOrdersReturnsNil(t *testing.T) {
	assert.Nil(t, Cluster2D(nil, 3))
}

func TestCluster2D_PartitionsAllOrders(t *testing.T) {
	orders := []Order{
		{ID: 1, Location: Location{ID: 1, X: 0, Y: 0, Demand: 1}},
		{ID: 2, Location: Location{ID: 2, X: 0.1, Y: 0.1, Demand: 1}},
		{ID: 3, Location: Location{ID: 3, X: 10, Y: 10, Demand: 1}},
		{ID: 4, Location: Location{ID: 4, X: 10.1, Y: 10.1, Demand: 1}},
	}

	clusters := Cluster2D(orders, 2)
	require.Len(t, clusters, 2)

	var total int
	seen := map[uint64]bool{}
	for _, c := range clusters {
		total += len(c.Orders)
		for _, o := range c.Orders {
			seen[o.ID] = true
		}
	}
	assert.Equal(t, len(orders), total)
	assert.Len(t, seen, len(orders))

	// Nearby points should land in the same cluster.
	clusterOf := func(id uint64) int {
		for i, c := range clusters {
			for _, o := range c.Orders {
				if o.ID == id {
					return i
				}
			}
		}
		return -1
	}
	assert.Equal(t, clusterOf(1), clusterOf(2))
	assert.Equal(t, clusterOf(3), clusterOf(4))
	assert.NotEqual(t, clusterOf(1), clusterOf(3))
}

func TestCluster2D_KClampedToOrderCount(t *testing.T) {
	orders := []Order{order(1, 1), order(2, 1)}
	clusters := Cluster2D(orders, 5)
	assert.Len(t, clusters, 2)
}

func TestCluster2D_Deterministic(t *testing.T) {
	orders := []Order{
		{ID: 1, Location: Location{ID: 1, X: 1, Y: 1}},
		{ID: 2, Location: Location{ID: 2, X: 2, Y: 5}},
		{ID: 3, Location: Location{ID: 3, X: -3, Y: -1}},
		{ID: 4, Location: Location{ID: 4, X: 8, Y: 8}},
		{ID: 5, Location: Location{ID: 5, X: -9, Y: 2}},
	}

	first := Cluster2D(orders, 3)
	second := Cluster2D(orders, 3)

	for i := range first {
		var firstIDs, secondIDs []uint64
		for _, o := range first[i].Orders {
			firstIDs = append(firstIDs, o.ID)
		}
		for _, o := range second[i].Orders {
			secondIDs = append(secondIDs, o.ID)
		}
		assert.Equal(t, firstIDs, secondIDs)
	}
}

func TestCluster_TotalDemand(t *testing.T) {
	c := Cluster{Orders: []Order{order(1, 2), order(2, 3.5)}}
	assert.Equal(t, 5.5, c.TotalDemand())
}
