package dispatch_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dispatcher/cvrp-engine/internal/common/testutil"
	"github.com/dispatcher/cvrp-engine/internal/dispatch"
	apperrors "github.com/dispatcher/cvrp-engine/pkg/errors"
)

// fakeOracle is a deterministic RoutingOracle used by orchestrator tests: it
// answers Matrix with straight-line distances between the supplied points,
// keeping scenario expectations reproducible.
type fakeOracle struct{}

func (fakeOracle) Matrix(_ context.Context, points []dispatch.Point) ([][]float64, error) {
	n := len(points)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			dx := points[i].Lon - points[j].Lon
			dy := points[i].Lat - points[j].Lat
			out[i][j] = math.Sqrt(dx*dx + dy*dy)
		}
	}
	return out, nil
}

func (fakeOracle) Polyline(_ context.Context, points []dispatch.Point) (string, error) {
	return "encoded", nil
}

func (fakeOracle) Geocode(_ context.Context, _ string) (dispatch.Point, error) {
	return dispatch.Point{}, nil
}

func (fakeOracle) Autocomplete(_ context.Context, _ string) ([]dispatch.GeocodeResult, error) {
	return nil, nil
}

func setupOrchestrator(t *testing.T) (*dispatch.Orchestrator, *gorm.DB, func()) {
	t.Helper()
	db, cleanup := testutil.SetupTestDB(t)
	repo := dispatch.NewRepository(db)
	return dispatch.NewOrchestrator(repo, fakeOracle{}), db, cleanup
}

func TestOrchestrator_Run_S1OneVehicleTwoCustomersOneSubRoute(t *testing.T) {
	orch, db, cleanup := setupOrchestrator(t)
	defer cleanup()

	depot := testutil.NewTestDepot(1, 0, 0)
	require.NoError(t, db.Create(depot).Error)
	product := testutil.NewTestProduct(1, 1)
	require.NoError(t, db.Create(product).Error)
	c1 := testutil.NewTestCustomer(1, 1, 0)
	c2 := testutil.NewTestCustomer(2, 0, 1)
	require.NoError(t, db.Create(c1).Error)
	require.NoError(t, db.Create(c2).Error)
	o1 := testutil.NewTestOrder(1, 1, 1, 1)
	o2 := testutil.NewTestOrder(2, 2, 1, 1)
	require.NoError(t, db.Create(o1).Error)
	require.NoError(t, db.Create(o2).Error)
	vehicle := testutil.NewTestVehicleRecord(1, 10)
	require.NoError(t, db.Create(vehicle).Error)

	var progress []string
	result, err := orch.Run(context.Background(), dispatch.DispatchRequest{
		VehicleIDs: []uint64{1},
		OrderIDs:   []uint64{1, 2},
		DepotID:    1,
	}, func(msg string) { progress = append(progress, msg) })

	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalTasksCreated)
	require.Len(t, result.Tasks, 1)

	task := result.Tasks[0]
	assert.Equal(t, dispatch.TaskStatusAssigned, task.Status)
	testutil.AssertNonNegativeDistance(t, task.TotalDistance)
	assert.InDelta(t, 2+math.Sqrt2, task.TotalDistance, 1e-6)
	require.Len(t, task.Stops, 2)
	assert.Equal(t, 1, task.Stops[0].StopOrder)
	assert.Equal(t, 2, task.Stops[1].StopOrder)

	assert.Equal(t, []string{
		dispatch.ProgressFetchingData,
		dispatch.ProgressClusteringOrders,
		dispatch.ProgressAssigningAndRoutes,
	}, progress)
}

func TestOrchestrator_Run_S13DemandExceedsEveryVehicle(t *testing.T) {
	orch, db, cleanup := setupOrchestrator(t)
	defer cleanup()

	depot := testutil.NewTestDepot(1, 0, 0)
	require.NoError(t, db.Create(depot).Error)
	product := testutil.NewTestProduct(1, 100)
	require.NoError(t, db.Create(product).Error)
	customer := testutil.NewTestCustomer(1, 1, 1)
	require.NoError(t, db.Create(customer).Error)
	o1 := testutil.NewTestOrder(1, 1, 1, 1)
	require.NoError(t, db.Create(o1).Error)
	vehicle := testutil.NewTestVehicleRecord(1, 10)
	require.NoError(t, db.Create(vehicle).Error)

	result, err := orch.Run(context.Background(), dispatch.DispatchRequest{
		VehicleIDs: []uint64{1},
		OrderIDs:   []uint64{1},
		DepotID:    1,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalTasksCreated)
}

func TestOrchestrator_Run_EmptyVehiclesIsInvalidInput(t *testing.T) {
	orch, _, cleanup := setupOrchestrator(t)
	defer cleanup()

	_, err := orch.Run(context.Background(), dispatch.DispatchRequest{
		VehicleIDs: nil,
		OrderIDs:   []uint64{1},
		DepotID:    1,
	}, nil)

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}

func TestOrchestrator_Run_UnknownOrderIDIsInvalidInput(t *testing.T) {
	orch, db, cleanup := setupOrchestrator(t)
	defer cleanup()

	vehicle := testutil.NewTestVehicleRecord(1, 10)
	require.NoError(t, db.Create(vehicle).Error)

	_, err := orch.Run(context.Background(), dispatch.DispatchRequest{
		VehicleIDs: []uint64{1},
		OrderIDs:   []uint64{999},
		DepotID:    1,
	}, nil)

	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}
