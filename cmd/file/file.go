// Package file implements one-shot classification of an image file from the
// command line, useful for validating models before deployment.
package file

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wastenet/wastenet-go/internal/classifier"
	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/logging"
)

// Command creates a new file command for classifying a single image.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file [input.jpg]",
		Short: "Classify an image file",
		Long:  "Classify a single capture image as Hazardous or Non-Hazardous.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return classifyFile(settings, args[0])
		},
	}

	return cmd
}

func classifyFile(settings *conf.Settings, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}

	clf := classifier.New(settings, nil)
	if err := clf.Load(); err != nil {
		if hr := logging.HumanReadable(); hr != nil {
			hr.Warn("model unavailable, using size heuristic", "error", err)
		} else {
			fmt.Printf("Model unavailable (%v), using size heuristic\n", err)
		}
	}
	defer clf.Close()

	result := clf.ClassifyFile(path, info.Size())

	fmt.Printf("File: %s (%d bytes)\n", path, info.Size())
	fmt.Printf("Classification: %s\n", result.Label)
	fmt.Printf("Method: %s\n", result.Method)
	if result.Method == classifier.MethodModel {
		fmt.Printf("Confidence: %.4f\n", result.Confidence)
	}

	return nil
}
