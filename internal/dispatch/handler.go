package dispatch

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dispatcher/cvrp-engine/internal/common/jobs"
	"github.com/dispatcher/cvrp-engine/internal/common/middleware"
	apperrors "github.com/dispatcher/cvrp-engine/pkg/errors"
)

// API exposes the dispatch engine's HTTP surface: submit a dispatch job,
// poll its status, and the geocode/autocomplete passthroughs.
type API struct {
	manager *jobs.Manager
	oracle  RoutingOracle
}

// NewAPI builds the dispatch HTTP API over manager (job submission/polling)
// and oracle (geocode/autocomplete passthrough).
func NewAPI(manager *jobs.Manager, oracle RoutingOracle) *API {
	return &API{manager: manager, oracle: oracle}
}

// SubmitResponse is returned from Submit: 202 Accepted with a task id the
// caller polls.
type SubmitResponse struct {
	TaskID string `json:"task_id"`
}

// StatusResponse mirrors the PENDING/PROGRESS/SUCCESS/FAILURE task
// lifecycle.
type StatusResponse struct {
	TaskID          string           `json:"task_id"`
	Status          DispatchJobState `json:"status"`
	ProgressMessage string           `json:"progress_message,omitempty"`
	Result          *DispatchResult  `json:"result,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// jobStateOf folds the queue's internal statuses onto the four states the
// dispatch surface reports. Retrying still counts as in-flight; cancelled
// surfaces as failure.
func jobStateOf(status jobs.JobStatus) DispatchJobState {
	switch status {
	case jobs.JobStatusPending:
		return DispatchJobPending
	case jobs.JobStatusProcessing, jobs.JobStatusRetrying:
		return DispatchJobProgress
	case jobs.JobStatusCompleted:
		return DispatchJobSuccess
	default:
		return DispatchJobFailure
	}
}

// Submit handles POST /api/v1/dispatch: validates the request, enqueues an
// async dispatch job, and returns 202 with the job id immediately.
// @Summary Submit a dispatch run
// @Description Clusters the given orders across the given vehicles and solves a route per vehicle, asynchronously.
// @Tags dispatch
// @Accept json
// @Produce json
// @Param request body DispatchRequest true "vehicle, order and depot ids"
// @Success 202 {object} SubmitResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /api/v1/dispatch [post]
func (a *API) Submit(c *gin.Context) {
	var req DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithBadRequest(c, err.Error())
		return
	}
	if len(req.VehicleIDs) == 0 || len(req.OrderIDs) == 0 || req.DepotID == 0 {
		middleware.AbortWithError(c, apperrors.NewInvalidInputError("vehicle_ids, order_ids and depot_id are required"))
		return
	}

	taskID, err := EnqueueDispatch(c.Request.Context(), a.manager, req)
	if err != nil {
		middleware.AbortWithInternal(c, "failed to submit dispatch job", err)
		return
	}

	c.JSON(http.StatusAccepted, SubmitResponse{TaskID: taskID})
}

// Status handles GET /api/v1/dispatch/:id: reports the PENDING/PROGRESS/
// SUCCESS/FAILURE state of a previously submitted dispatch job.
// @Summary Poll a dispatch run
// @Tags dispatch
// @Produce json
// @Param id path string true "task id returned from Submit"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /api/v1/dispatch/{id} [get]
func (a *API) Status(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		middleware.AbortWithBadRequest(c, "task id is required")
		return
	}

	job, err := a.manager.GetJobStatus(c.Request.Context(), taskID)
	if err != nil {
		middleware.AbortWithNotFound(c, "dispatch task")
		return
	}

	resp := StatusResponse{
		TaskID:          job.ID,
		Status:          jobStateOf(job.Status),
		ProgressMessage: job.Progress,
		Error:           job.Error,
	}
	if job.Status == jobs.JobStatusCompleted && job.Result != nil {
		resp.Result = decodeDispatchResult(job.Result)
	}

	c.JSON(http.StatusOK, resp)
}

// GeocodeQuery is the query-string binding for Geocode.
type GeocodeQuery struct {
	Address string `form:"address" binding:"required"`
}

// Geocode handles GET /api/v1/geocode: forward-geocodes a free-text address
// into a coordinate, passing through to the routing oracle.
// @Summary Geocode an address
// @Tags dispatch
// @Produce json
// @Param address query string true "free-text address"
// @Success 200 {object} Point
// @Router /api/v1/geocode [get]
func (a *API) Geocode(c *gin.Context) {
	var q GeocodeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.AbortWithBadRequest(c, err.Error())
		return
	}

	result, err := a.oracle.Geocode(c.Request.Context(), q.Address)
	if err != nil {
		middleware.AbortWithError(c, apperrors.GetAppError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// AutocompleteQuery is the query-string binding for Autocomplete.
type AutocompleteQuery struct {
	Query string `form:"q" binding:"required"`
}

// Autocomplete handles GET /api/v1/autocomplete: suggests address
// completions for a partial query string.
// @Summary Autocomplete an address
// @Tags dispatch
// @Produce json
// @Param q query string true "partial address text"
// @Success 200 {array} GeocodeResult
// @Router /api/v1/autocomplete [get]
func (a *API) Autocomplete(c *gin.Context) {
	var q AutocompleteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.AbortWithBadRequest(c, err.Error())
		return
	}

	results, err := a.oracle.Autocomplete(c.Request.Context(), q.Query)
	if err != nil {
		middleware.AbortWithError(c, apperrors.GetAppError(err))
		return
	}

	c.JSON(http.StatusOK, results)
}

// SetupRoutes registers the dispatch engine's HTTP surface under group.
// Geocode responses are cacheable (addresses don't move), so those routes
// get the response cache when one is supplied.
func SetupRoutes(group *gin.RouterGroup, api *API, geoCache *middleware.CacheMiddleware) {
	group.POST("/dispatch", api.Submit)
	group.GET("/dispatch/:id", api.Status)

	geo := group.Group("")
	if geoCache != nil {
		geo.Use(geoCache.CacheMedium())
	}
	geo.GET("/geocode", api.Geocode)
	geo.GET("/autocomplete", api.Autocomplete)
}

// decodeDispatchResult converts a job's generic result map back into a
// typed DispatchResult for the status response.
func decodeDispatchResult(raw map[string]interface{}) *DispatchResult {
	result, err := remarshalDispatchResult(raw)
	if err != nil {
		return nil
	}
	return result
}
