package dispatch

import (
	"context"

	apperrors "github.com/dispatcher/cvrp-engine/pkg/errors"

	"github.com/dispatcher/cvrp-engine/internal/common/logging"
)

// Orchestrator drives one dispatch job end-to-end: fetch, cluster, assign,
// per-vehicle solve, persist.
type Orchestrator struct {
	repo     *Repository
	oracle   RoutingOracle
	gaParams GAParams
}

// NewOrchestrator builds an orchestrator over repo and oracle, using the
// dispatch engine's default GA parameters.
func NewOrchestrator(repo *Repository, oracle RoutingOracle) *Orchestrator {
	return &Orchestrator{repo: repo, oracle: oracle, gaParams: DefaultGAParams()}
}

// ProgressFunc receives progress_message updates at stage boundaries.
type ProgressFunc func(message string)

// Run executes one dispatch request to completion, returning the terminal
// result on success. On a per-vehicle solve failure, already-persisted
// Tasks from prior vehicles are left in place (no rollback) and the error
// is returned unchanged so the caller can mark the job FAILURE.
func (o *Orchestrator) Run(ctx context.Context, req DispatchRequest, onProgress ProgressFunc) (DispatchResult, error) {
	report(onProgress, ProgressFetchingData)

	vehicles, err := o.repo.LoadVehicles(ctx, req.VehicleIDs)
	if err != nil {
		return DispatchResult{}, err
	}
	orders, err := o.repo.LoadOrders(ctx, req.OrderIDs)
	if err != nil {
		return DispatchResult{}, err
	}
	depot, err := o.repo.LoadDepot(ctx, req.DepotID)
	if err != nil {
		return DispatchResult{}, err
	}

	report(onProgress, ProgressClusteringOrders)

	k := len(vehicles)
	if len(orders) < k {
		k = len(orders)
	}
	if k == 0 {
		return DispatchResult{TotalTasksCreated: 0}, nil
	}
	clusters := Cluster2D(orders, k)

	report(onProgress, ProgressAssigningAndRoutes)

	assignments := AssignClusters(vehicles, clusters)
	if len(assignments) == 0 {
		return DispatchResult{TotalTasksCreated: 0}, nil
	}

	matrix, err := o.buildSharedMatrix(ctx, depot, assignments)
	if err != nil {
		return DispatchResult{}, err
	}

	var tasks []Task
	for _, assignment := range assignments {
		task, err := o.solveAndPersist(ctx, depot, assignment, matrix)
		if err != nil {
			logging.GetLogger().Error("dispatch: vehicle solve failed",
				"vehicle_id", assignment.Vehicle.ID, "error", err)
			return DispatchResult{}, err
		}
		tasks = append(tasks, task)
	}

	return DispatchResult{TotalTasksCreated: len(tasks), Tasks: tasks}, nil
}

// buildSharedMatrix makes a single Oracle.matrix call over depot plus every
// assigned customer, so every per-vehicle GA can share one read-only
// distance cache.
func (o *Orchestrator) buildSharedMatrix(ctx context.Context, depot Location, assignments []VehicleAssignment) (*DistanceMatrixCache, error) {
	locations := []Location{depot}
	seen := map[uint64]bool{depot.ID: true}
	for _, a := range assignments {
		for _, loc := range a.Cluster.Locations() {
			if !seen[loc.ID] {
				seen[loc.ID] = true
				locations = append(locations, loc)
			}
		}
	}

	if len(locations) > MatrixPointLimit {
		return nil, apperrors.NewTooManyPointsError(len(locations), MatrixPointLimit)
	}

	points := make([]Point, len(locations))
	for i, l := range locations {
		points[i] = Point{Lon: l.X, Lat: l.Y}
	}

	result, err := o.oracle.Matrix(ctx, points)
	if err != nil {
		return nil, err
	}

	return NewDistanceMatrixCache(locations, result), nil
}

// solveAndPersist runs the GA for one (vehicle, cluster) pair and persists
// the resulting Task, numbering stops globally across all of its
// sub-routes rather than restarting the counter per sub-route.
func (o *Orchestrator) solveAndPersist(ctx context.Context, depot Location, assignment VehicleAssignment, matrix *DistanceMatrixCache) (Task, error) {
	solver := NewGASolver(o.gaParams)
	customers := assignment.Cluster.Locations()

	best, err := solver.Solve(ctx, depot, customers, assignment.Vehicle.Capacity, matrix)
	if err != nil {
		return Task{}, err
	}

	geometries := make([]string, 0, len(best.Routes))
	var stops []TaskStop
	counter := 1
	for _, route := range best.Routes {
		if len(route.Stops) == 0 {
			continue
		}

		points := make([]Point, 0, len(route.Stops)+2)
		points = append(points, Point{Lon: depot.X, Lat: depot.Y})
		for _, s := range route.Stops {
			points = append(points, Point{Lon: s.X, Lat: s.Y})
		}
		points = append(points, Point{Lon: depot.X, Lat: depot.Y})

		polyline, err := o.oracle.Polyline(ctx, points)
		if err != nil {
			return Task{}, err
		}
		geometries = append(geometries, polyline)

		for _, s := range route.Stops {
			stops = append(stops, TaskStop{CustomerID: s.ID, StopOrder: counter})
			counter++
		}
	}

	task := Task{
		DepotID:        depot.ID,
		VehicleID:      assignment.Vehicle.ID,
		Status:         TaskStatusAssigned,
		TotalDistance:  best.TotalDistance,
		PathGeometries: geometries,
		Stops:          stops,
	}

	if err := o.repo.SaveTask(ctx, &task); err != nil {
		return Task{}, apperrors.NewInternalError(err.Error()).WithInternal(err)
	}

	return task, nil
}

func report(fn ProgressFunc, message string) {
	if fn != nil {
		fn(message)
	}
}
