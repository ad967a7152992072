package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/dispatcher/cvrp-engine/internal/common/jobs"
	"github.com/dispatcher/cvrp-engine/internal/common/logging"
)

// JobType is the jobs.Job.Type value this handler answers to.
const JobType = "dispatch"

// Handler adapts the Orchestrator onto the shared job queue's JobHandler
// interface, so a dispatch run executes as one background job like any
// other.
type Handler struct {
	orchestrator *Orchestrator
	manager      *jobs.Manager
	perf         *logging.PerformanceMonitor
}

// NewHandler builds a job handler wired to orchestrator and manager; the
// manager reference is used to push progress_message updates mid-run.
func NewHandler(orchestrator *Orchestrator, manager *jobs.Manager) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		manager:      manager,
		perf:         logging.NewPerformanceMonitor(logging.GetLogger()),
	}
}

// GetJobType implements jobs.JobHandler.
func (h *Handler) GetJobType() string {
	return JobType
}

// Handle implements jobs.JobHandler: decodes the DispatchRequest from
// job.Data, runs the orchestrator, and stores the DispatchResult back onto
// the job on success. A returned error marks the job FAILURE via the
// queue's existing retry/fail machinery.
func (h *Handler) Handle(ctx context.Context, job *jobs.Job) error {
	req, err := decodeDispatchRequest(job.Data)
	if err != nil {
		return err
	}

	run, err := h.perf.TrackOperationWithResult("dispatch_solve", func() (interface{}, error) {
		return h.orchestrator.Run(ctx, req, func(message string) {
			_ = h.manager.UpdateJobProgress(ctx, job.ID, message)
		})
	})
	if err != nil {
		return err
	}
	result := run.(DispatchResult)

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal dispatch result: %w", err)
	}
	var resultMap map[string]interface{}
	if err := json.Unmarshal(resultBytes, &resultMap); err != nil {
		return fmt.Errorf("unmarshal dispatch result: %w", err)
	}
	job.Result = resultMap

	return nil
}

// decodeDispatchRequest round-trips job.Data (a generic map, as stored in
// Redis) back into a typed DispatchRequest.
func decodeDispatchRequest(data map[string]interface{}) (DispatchRequest, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return DispatchRequest{}, fmt.Errorf("marshal job data: %w", err)
	}
	var req DispatchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return DispatchRequest{}, fmt.Errorf("unmarshal dispatch request: %w", err)
	}
	return req, nil
}

// remarshalDispatchResult converts a job's generic result map back into a
// typed DispatchResult for status responses.
func remarshalDispatchResult(data map[string]interface{}) (*DispatchResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal job result: %w", err)
	}
	var result DispatchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("unmarshal dispatch result: %w", err)
	}
	return &result, nil
}

// EnqueueDispatch submits a new dispatch job, returning the job id the
// caller can poll.
func EnqueueDispatch(ctx context.Context, manager *jobs.Manager, req DispatchRequest) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal dispatch request: %w", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("unmarshal dispatch request: %w", err)
	}

	// Resubmitting the same fleet/orders is legitimate (a retry, or the
	// underlying data changed), so every submission carries a fresh nonce to
	// keep the queue's content fingerprint from rejecting it as a duplicate.
	// decodeDispatchRequest ignores the extra key.
	data["submission_id"] = uuid.NewString()

	job := &jobs.Job{
		Type:     JobType,
		Data:     data,
		Priority: jobs.JobPriorityNormal,
	}
	if err := manager.EnqueueJob(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}
