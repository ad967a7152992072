// Package dispatch implements the capacitated vehicle routing dispatch
// engine: clustering, vehicle assignment, genetic-algorithm route
// optimisation, and the orchestrator that ties them to persistence and the
// async job surface.
package dispatch

import (
	"time"

	"github.com/google/uuid"
)

// CapacityPenalty weights a sub-route's capacity overflow in the GA
// fitness function.
const CapacityPenalty = 1000.0

// MatrixPointLimit is the hard cap on points in a single routing-oracle
// matrix call.
const MatrixPointLimit = 50

// Location is a single point in the 2-D plane with an optional demand. The
// depot is a Location with Demand == 0.
type Location struct {
	ID     uint64
	X      float64 // longitude
	Y      float64 // latitude
	Demand float64
}

// Vehicle is a capacity-bounded dispatch unit.
type Vehicle struct {
	ID       uint64
	Capacity float64
}

// Product is a catalog line item; an Order's demand is the weighted sum of
// its OrderProduct quantities.
type Product struct {
	ID     uint64
	Name   string
	Weight float64
}

// OrderProduct is one line item of an Order.
type OrderProduct struct {
	ProductID uint64
	Quantity  float64
}

// Order is a customer request bound to a location, with demand computed
// from its line items.
type Order struct {
	ID       uint64
	Location Location
	Items    []OrderProduct
	Products map[uint64]Product // product catalog, keyed by ProductID, for demand computation
}

// ComputeDemand returns the sum of product.weight * quantity over the
// order's line items.
// If Items is empty, Location.Demand is used directly (callers that already
// resolved demand need not populate Items).
func (o Order) ComputeDemand() float64 {
	if len(o.Items) == 0 {
		return o.Location.Demand
	}
	var total float64
	for _, item := range o.Items {
		if p, ok := o.Products[item.ProductID]; ok {
			total += p.Weight * item.Quantity
		}
	}
	return total
}

// Cluster is an unordered set of orders produced by the clusterer.
type Cluster struct {
	Orders []Order
}

// TotalDemand sums demand across every order in the cluster.
func (c Cluster) TotalDemand() float64 {
	var total float64
	for _, o := range c.Orders {
		total += o.ComputeDemand()
	}
	return total
}

// Locations returns the cluster's customer locations, demand populated
// from ComputeDemand.
func (c Cluster) Locations() []Location {
	locs := make([]Location, len(c.Orders))
	for i, o := range c.Orders {
		loc := o.Location
		loc.Demand = o.ComputeDemand()
		locs[i] = loc
	}
	return locs
}

// SubRoute is a maximal prefix of a decoded permutation whose cumulative
// demand fits one vehicle load; it starts and ends at the depot (the depot
// itself is not stored in Stops).
type SubRoute struct {
	Stops []Location
}

// Demand sums the stops' demand.
func (r SubRoute) Demand() float64 {
	var total float64
	for _, s := range r.Stops {
		total += s.Demand
	}
	return total
}

// Chromosome is one GA individual: a permutation of a cluster's customer
// locations, never containing the depot. Routes/TotalDistance/
// CapacityViolation/Fitness are derived at fitness-evaluation time.
type Chromosome struct {
	Genes []Location

	Routes            []SubRoute
	TotalDistance     float64
	CapacityViolation float64
	Fitness           float64

	// Geometries holds one encoded polyline per sub-route, populated only
	// for the chromosome returned as the GA's best result.
	Geometries []string
}

// Clone returns a deep copy safe to mutate independently.
func (c Chromosome) Clone() Chromosome {
	genes := make([]Location, len(c.Genes))
	copy(genes, c.Genes)
	return Chromosome{Genes: genes}
}

// TaskStatus is the lifecycle state of a persisted Task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusAssigned   TaskStatus = "ASSIGNED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusFailed     TaskStatus = "FAILED"
)

// TaskStop is one non-depot visit within a Task, numbered globally across
// all of the task's sub-routes.
type TaskStop struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskID     uuid.UUID `gorm:"type:uuid;index"`
	CustomerID uint64
	StopOrder  int
}

// Task is the persisted output of one (vehicle, cluster) solve.
type Task struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	DepotID        uint64
	VehicleID      uint64
	Status         TaskStatus `gorm:"type:varchar(20)"`
	TotalDistance  float64
	PathGeometries []string `gorm:"serializer:json"`
	Stops          []TaskStop `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
}

// DispatchJobState mirrors the async job surface's states.
type DispatchJobState string

const (
	DispatchJobPending  DispatchJobState = "PENDING"
	DispatchJobProgress DispatchJobState = "PROGRESS"
	DispatchJobSuccess  DispatchJobState = "SUCCESS"
	DispatchJobFailure  DispatchJobState = "FAILURE"
)

// DispatchResult is the terminal-success payload of a dispatch job.
type DispatchResult struct {
	TotalTasksCreated int    `json:"total_tasks_created"`
	Tasks             []Task `json:"tasks"`
}

// DispatchRequest is the input to one dispatch run.
type DispatchRequest struct {
	VehicleIDs []uint64 `json:"vehicle_ids"`
	OrderIDs   []uint64 `json:"order_ids"`
	DepotID    uint64   `json:"depot_id"`
}

// Progress message strings reported at stage boundaries.
const (
	ProgressFetchingData       = "Fetching data..."
	ProgressClusteringOrders   = "Clustering orders..."
	ProgressAssigningAndRoutes = "Assigning clusters and optimizing routes..."
)
