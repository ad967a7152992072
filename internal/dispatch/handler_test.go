package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatcher/cvrp-engine/internal/common/jobs"
)

func TestJobStateOf(t *testing.T) {
	assert.Equal(t, DispatchJobPending, jobStateOf(jobs.JobStatusPending))
	assert.Equal(t, DispatchJobProgress, jobStateOf(jobs.JobStatusProcessing))
	assert.Equal(t, DispatchJobProgress, jobStateOf(jobs.JobStatusRetrying))
	assert.Equal(t, DispatchJobSuccess, jobStateOf(jobs.JobStatusCompleted))
	assert.Equal(t, DispatchJobFailure, jobStateOf(jobs.JobStatusFailed))
	assert.Equal(t, DispatchJobFailure, jobStateOf(jobs.JobStatusCancelled))
}

func TestDecodeDispatchRequestRoundTrip(t *testing.T) {
	req := DispatchRequest{VehicleIDs: []uint64{1, 2}, OrderIDs: []uint64{3}, DepotID: 4}

	data := map[string]interface{}{
		"vehicle_ids": []interface{}{float64(1), float64(2)},
		"order_ids":   []interface{}{float64(3)},
		"depot_id":    float64(4),
	}

	decoded, err := decodeDispatchRequest(data)
	assert.NoError(t, err)
	assert.Equal(t, req, decoded)
}

// The worker merges its processing metadata into the handler-set result map
// before persisting it; the poll decode must still see the dispatch payload.
func TestRemarshalDispatchResult_KeepsPayloadAlongsideWorkerMetadata(t *testing.T) {
	data := map[string]interface{}{
		"total_tasks_created": float64(2),
		"tasks": []interface{}{
			map[string]interface{}{"DepotID": float64(1), "VehicleID": float64(7)},
			map[string]interface{}{"DepotID": float64(1), "VehicleID": float64(9)},
		},
		"processing_time": "1.2s",
		"worker_id":       float64(3),
	}

	result, err := remarshalDispatchResult(data)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalTasksCreated)
	require.Len(t, result.Tasks, 2)
	assert.Equal(t, uint64(7), result.Tasks[0].VehicleID)
	assert.Equal(t, uint64(9), result.Tasks[1].VehicleID)
}
