package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rentora/internal/common"
	"rentora/internal/jobs/background"
	"rentora/internal/models"
)

// JobHandlers exposes the background scheduler to operators
type JobHandlers struct {
	scheduler *background.JobScheduler
}

// NewJobHandlers creates a new job handlers instance
func NewJobHandlers(scheduler *background.JobScheduler) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

// GetJobStatus handles GET /v1/jobs/status
func (h *JobHandlers) GetJobStatus(c echo.Context) error {
	ctx := c.Request().Context()

	role, ok := common.GetUserRoleFromContext(ctx)
	if !ok || role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Admin role required")
	}

	jobs := h.scheduler.GetJobStatus()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}
