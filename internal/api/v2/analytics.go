// internal/api/v2/analytics.go
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetMonthlyWasteCounts handles GET /api/v2/analytics/waste/monthly. Returns
// per-month hazardous and non-hazardous counts for the requested window,
// most recent month last, with zero rows for empty months.
func (c *Controller) GetMonthlyWasteCounts(ctx echo.Context) error {
	months, _ := strconv.Atoi(ctx.QueryParam("months"))
	if months <= 0 {
		months = 12
	} else if months > 60 {
		months = 60
	}

	counts, err := c.DS.MonthlyWasteCounts(months)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to compute monthly waste counts", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, counts)
}
