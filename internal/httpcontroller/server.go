// internal/httpcontroller/server.go
package httpcontroller

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/wastenet/wastenet-go/internal/api/v2"
	"github.com/wastenet/wastenet-go/internal/classifier"
	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/datastore"
	"github.com/wastenet/wastenet-go/internal/imagestore"
	"github.com/wastenet/wastenet-go/internal/logging"
	"github.com/wastenet/wastenet-go/internal/observability"
	"github.com/wastenet/wastenet-go/internal/processor"
)

// Server encapsulates the Echo server and its wiring.
type Server struct {
	Echo       *echo.Echo
	DS         datastore.Interface
	Settings   *conf.Settings
	Processor  *processor.Processor
	Classifier *classifier.Classifier
	Images     *imagestore.Store
	APIV2      *api.Controller
	metrics    *observability.Metrics

	webLogger      *slog.Logger
	webLoggerClose func() error
}

// New initializes the HTTP server with the given datastore and pipeline.
func New(settings *conf.Settings, dataStore datastore.Interface, proc *processor.Processor,
	clf *classifier.Classifier, images *imagestore.Store, metrics *observability.Metrics) *Server {
	configureDefaultSettings(settings)

	s := &Server{
		Echo:       echo.New(),
		DS:         dataStore,
		Settings:   settings,
		Processor:  proc,
		Classifier: clf,
		Images:     images,
		metrics:    metrics,
	}

	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()

	s.initializeServer()
	return s
}

// Start begins listening and serving HTTP requests.
func (s *Server) Start() {
	errChan := make(chan error)

	go func() {
		if err := s.Echo.Start(":" + s.Settings.WebServer.Port); err != nil {
			errChan <- err
		}
	}()

	go handleServerError(errChan)

	fmt.Printf("HTTP server started on port %s\n", s.Settings.WebServer.Port)
}

func (s *Server) initializeServer() {
	s.Echo.HideBanner = true
	s.initLogger()
	s.configureMiddleware()

	// Prometheus scrape endpoint sits outside the API group
	if s.metrics != nil {
		s.Echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	s.Debug("Initializing JSON API v2")
	s.APIV2 = api.New(s.Echo, s.DS, s.Settings, s.Processor, s.Classifier, s.Images,
		log.Default(), s.metrics)
}

// configureDefaultSettings sets default values for server settings.
func configureDefaultSettings(settings *conf.Settings) {
	if settings.WebServer.Port == "" {
		settings.WebServer.Port = "8080"
	}
}

// handleServerError listens for server errors and handles them.
func handleServerError(errChan chan error) {
	for err := range errChan {
		log.Printf("Server error: %v", err)
	}
}

// initLogger initializes the structured web logger.
func (s *Server) initLogger() {
	webLogPath := "logs/web.log"
	webLogger, closeFunc, err := logging.NewFileLogger(webLogPath, "web", slog.LevelInfo)
	if err != nil {
		log.Printf("Warning: Failed to initialize web structured logger: %v", err)
		// Continue without structured logging rather than failing completely
		return
	}
	s.webLogger = webLogger
	s.webLoggerClose = closeFunc
	log.Printf("Web structured logging initialized to %s", webLogPath)

	// Rely on middleware for request logging
	s.Echo.Logger.SetOutput(io.Discard)
	s.Echo.Logger.SetLevel(99)
}

// Debug logs debug messages if debug mode is enabled
func (s *Server) Debug(format string, v ...any) {
	if s.Settings.WebServer.Debug {
		switch len(v) {
		case 0:
			log.Print(format)
		default:
			log.Printf(format, v...)
		}

		if s.webLogger != nil {
			var msg string
			switch len(v) {
			case 0:
				msg = format
			default:
				msg = fmt.Sprintf(format, v...)
			}
			s.webLogger.Debug(msg)
		}
	}
}

// Shutdown performs cleanup operations and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.APIV2 != nil {
		s.APIV2.Shutdown()
	}

	if s.webLoggerClose != nil {
		if err := s.webLoggerClose(); err != nil {
			log.Printf("Error closing web log file: %v", err)
		}
	}

	return s.Echo.Shutdown(ctx)
}
