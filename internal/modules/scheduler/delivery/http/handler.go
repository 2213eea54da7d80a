package http

import (
	"net/http"
	"strconv"

	schedulerService "anoa.com/cpquest/internal/modules/scheduler/service"
	"anoa.com/cpquest/pkg/response"
	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	runner schedulerService.Runner
}

func NewJobHandler(runner schedulerService.Runner) *JobHandler {
	return &JobHandler{runner: runner}
}

// RunAll is the periodic trigger. It answers 200 even when some jobs failed;
// callers read the per-job status.
func (h *JobHandler) RunAll(c *gin.Context) {
	results := h.runner.RunAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": results, "failed": countFailed(results)})
}

func (h *JobHandler) Run(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	result, err := h.runner.Run(c.Request.Context(), c.Param("name"), force)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.runner.Jobs(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func countFailed(results []schedulerService.JobResult) int {
	n := 0
	for _, r := range results {
		if r.Status == schedulerService.StatusFailure {
			n++
		}
	}
	return n
}
