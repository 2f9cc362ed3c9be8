// Package serve implements the long-running service command: HTTP ingest,
// classification and persistence.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wastenet/wastenet-go/internal/classifier"
	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/datastore"
	"github.com/wastenet/wastenet-go/internal/httpcontroller"
	"github.com/wastenet/wastenet-go/internal/imagestore"
	"github.com/wastenet/wastenet-go/internal/logging"
	"github.com/wastenet/wastenet-go/internal/mqtt"
	"github.com/wastenet/wastenet-go/internal/observability"
	"github.com/wastenet/wastenet-go/internal/processor"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the waste monitoring service",
		Long:  "Start the HTTP server that receives camera captures, classifies them and records disposals.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(settings)
		},
	}

	cmd.Flags().StringVarP(&settings.WebServer.Port, "port", "p", viper.GetString("webserver.port"), "Port to listen on")

	return cmd
}

func runService(settings *conf.Settings) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := logging.Structured()
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	dataStore := datastore.New(settings, metrics)
	if dataStore == nil {
		return fmt.Errorf("no database backend enabled, enable output.sqlite or output.mysql")
	}
	if err := dataStore.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer closeDataStoreOnExit(dataStore, logger)

	images, err := imagestore.New(settings.Capture.Path, metrics)
	if err != nil {
		return fmt.Errorf("initializing image store: %w", err)
	}

	// Model loading is asynchronous; uploads served before the model is
	// ready use the size heuristic.
	clf := classifier.New(settings, metrics)
	clf.StartLoader(ctx)
	defer clf.Close()

	var publisher mqtt.Client
	if settings.MQTT.Enabled {
		publisher, err = mqtt.NewClient(settings, metrics)
		if err != nil {
			return fmt.Errorf("initializing MQTT client: %w", err)
		}
		connectCtx, connectCancel := context.WithTimeout(ctx, 30*time.Second)
		if err := publisher.Connect(connectCtx); err != nil {
			// The client reconnects on its own; keep starting up.
			logger.Warn("MQTT connect failed, will retry in background", "error", err)
		}
		connectCancel()
		defer publisher.Disconnect()
	}

	proc := processor.New(settings, images, clf, dataStore, publisher)

	server := httpcontroller.New(settings, dataStore, proc, clf, images, metrics)
	server.Start()

	// Block until SIGINT or SIGTERM.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received signal, shutting down", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down HTTP server", "error", err)
	}

	return nil
}

func closeDataStoreOnExit(ds datastore.Interface, logger *slog.Logger) {
	if err := ds.Close(); err != nil {
		logger.Error("error closing datastore", "error", err)
	}
}
