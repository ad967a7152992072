package dispatch

import "sort"

// VehicleAssignment binds one vehicle to the cluster it will serve.
type VehicleAssignment struct {
	Vehicle Vehicle
	Cluster Cluster
}

// AssignClusters binds clusters to vehicles greedily, largest-first:
// vehicles are processed in descending capacity order, and each takes the
// largest-by-demand cluster that still fits. Clusters that fit no
// remaining vehicle are left unassigned.
func AssignClusters(vehicles []Vehicle, clusters []Cluster) []VehicleAssignment {
	sortedVehicles := make([]Vehicle, len(vehicles))
	copy(sortedVehicles, vehicles)
	sort.SliceStable(sortedVehicles, func(i, j int) bool {
		if sortedVehicles[i].Capacity != sortedVehicles[j].Capacity {
			return sortedVehicles[i].Capacity > sortedVehicles[j].Capacity
		}
		return sortedVehicles[i].ID < sortedVehicles[j].ID
	})

	remaining := make([]Cluster, 0, len(clusters))
	for _, c := range clusters {
		if len(c.Orders) > 0 {
			remaining = append(remaining, c)
		}
	}

	var assignments []VehicleAssignment

	for _, v := range sortedVehicles {
		if len(remaining) == 0 {
			break
		}

		sort.SliceStable(remaining, func(i, j int) bool {
			return remaining[i].TotalDemand() > remaining[j].TotalDemand()
		})

		chosen := -1
		for i, c := range remaining {
			if c.TotalDemand() <= v.Capacity {
				chosen = i
				break
			}
		}

		if chosen == -1 {
			continue
		}

		assignments = append(assignments, VehicleAssignment{Vehicle: v, Cluster: remaining[chosen]})
		remaining = append(remaining[:chosen], remaining[chosen+1:]...)
	}

	return assignments
}
