package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id uint64, demand float64) Order {
	return Order{ID: id, Location: Location{ID: id, Demand: demand}}
}

func TestAssignClusters_LargestFirst(t *testing.T) {
	vehicles := []Vehicle{
		{ID: 1, Capacity: 10},
		{ID: 2, Capacity: 6},
	}
	clusters := []Cluster{
		{Orders: []Order{order(1, 4)}},         // total demand 4
		{Orders: []Order{order(2, 9)}},         // total demand 9
	}

	assignments := AssignClusters(vehicles, clusters)
	require.Len(t, assignments, 2)

	// Vehicle 1 (cap 10) is processed first and takes the largest cluster
	// that fits (demand 9); vehicle 2 (cap 6) then takes the remaining one.
	assert.Equal(t, uint64(1), assignments[0].Vehicle.ID)
	assert.Equal(t, 9.0, assignments[0].Cluster.TotalDemand())
	assert.Equal(t, uint64(2), assignments[1].Vehicle.ID)
	assert.Equal(t, 4.0, assignments[1].Cluster.TotalDemand())
}

func TestAssignClusters_SkipsVehicleWhenNothingFits(t *testing.T) {
	vehicles := []Vehicle{{ID: 1, Capacity: 3}}
	clusters := []Cluster{{Orders: []Order{order(1, 50)}}}

	assignments := AssignClusters(vehicles, clusters)
	assert.Empty(t, assignments)
}

func TestAssignClusters_TieBreakByVehicleIDAscending(t *testing.T) {
	vehicles := []Vehicle{
		{ID: 2, Capacity: 10},
		{ID: 1, Capacity: 10},
	}
	clusters := []Cluster{{Orders: []Order{order(1, 1)}}}

	assignments := AssignClusters(vehicles, clusters)
	require.Len(t, assignments, 1)
	assert.Equal(t, uint64(1), assignments[0].Vehicle.ID)
}

func TestAssignClusters_EmptyClustersIgnored(t *testing.T) {
	vehicles := []Vehicle{{ID: 1, Capacity: 10}}
	clusters := []Cluster{{}, {Orders: []Order{order(1, 2)}}}

	assignments := AssignClusters(vehicles, clusters)
	require.Len(t, assignments, 1)
	assert.Equal(t, 2.0, assignments[0].Cluster.TotalDemand())
}

func TestAssignClusters_MoreVehiclesThanClusters(t *testing.T) {
	vehicles := []Vehicle{{ID: 1, Capacity: 10}, {ID: 2, Capacity: 5}}
	clusters := []Cluster{{Orders: []Order{order(1, 3)}}}

	assignments := AssignClusters(vehicles, clusters)
	require.Len(t, assignments, 1)
	assert.Equal(t, uint64(1), assignments[0].Vehicle.ID)
}
