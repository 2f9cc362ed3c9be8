// internal/api/v2/media.go
package api

import (
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/wastenet/wastenet-go/internal/errors"
)

// ServeImage handles GET /api/v2/media/images/:filename. Filenames are
// validated by the image store so path traversal never reaches the
// filesystem.
func (c *Controller) ServeImage(ctx echo.Context) error {
	filename := ctx.Param("filename")

	path, err := c.Images.Resolve(filename)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid filename", http.StatusBadRequest)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.HandleError(ctx, err, "Image not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to access image", http.StatusInternalServerError)
	}

	return ctx.File(path)
}
