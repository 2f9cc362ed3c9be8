// internal/api/v2/health.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/wastenet/wastenet-go/internal/classifier"
)

// HealthResponse reports overall service health
type HealthResponse struct {
	Status        string `json:"status"`
	ModelReady    bool   `json:"modelReady"`
	DatabaseOK    bool   `json:"databaseOk"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Timestamp     string `json:"timestamp"`
}

// GetHealth handles GET /api/v2/health. The service reports degraded rather
// than unhealthy while the model is absent because the fallback heuristic
// keeps uploads working.
func (c *Controller) GetHealth(ctx echo.Context) error {
	dbOK := true
	if _, err := c.DS.GetLastDisposals(1); err != nil {
		dbOK = false
	}

	modelReady := c.Classifier.Ready()

	status := "healthy"
	switch {
	case !dbOK:
		status = "unhealthy"
	case !modelReady:
		status = "degraded"
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	return ctx.JSON(code, HealthResponse{
		Status:        status,
		ModelReady:    modelReady,
		DatabaseOK:    dbOK,
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
		Timestamp:     time.Now().Format(time.RFC3339),
	})
}

// GetModelStatus handles GET /api/v2/model
func (c *Controller) GetModelStatus(ctx echo.Context) error {
	var status classifier.Status
	if c.Classifier != nil {
		status = c.Classifier.Status()
	}
	return ctx.JSON(http.StatusOK, status)
}
