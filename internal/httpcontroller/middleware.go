package httpcontroller

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// maxUploadBody caps request bodies; camera frames are well under this.
const maxUploadBody = "5M"

// configureMiddleware sets up middleware for the server.
func (s *Server) configureMiddleware() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.BodyLimit(maxUploadBody))
	s.Echo.Use(s.CORSMiddleware())
	s.Echo.Use(s.GzipMiddleware())
	s.Echo.Use(s.MetricsMiddleware())
	s.Echo.Use(s.LoggingMiddleware())
}

// CORSMiddleware allows dashboards on other origins to read the API.
func (s *Server) CORSMiddleware() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderContentType, "X-Bin-ID"},
	})
}

// GzipMiddleware configures Gzip compression for the server
func (s *Server) GzipMiddleware() echo.MiddlewareFunc {
	return middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     6,
		MinLength: 2048,
		Skipper: func(c echo.Context) bool {
			// Images and metrics are served uncompressed
			return c.Path() == "/metrics"
		},
	})
}

// MetricsMiddleware records per-request HTTP metrics.
func (s *Server) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.metrics == nil || s.metrics.HTTP == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			s.metrics.HTTP.RecordRequest(c.Request().Method, c.Path(),
				status, time.Since(start))
			return err
		}
	}
}

// LoggingMiddleware logs completed requests to the structured web logger.
func (s *Server) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			if s.webLogger != nil {
				s.webLogger.Info("Request handled",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"status", c.Response().Status,
					"ip", c.RealIP(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
			return err
		}
	}
}
