package classifier

import (
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoding for capture frames
	_ "image/png"  // camera test fixtures are sometimes PNG
	"os"
	"sort"
	"time"

	"github.com/wastenet/wastenet-go/internal/errors"
	"golang.org/x/image/draw"
)

// Predict performs inference on a prepared input buffer and returns results
// paired with labels, sorted by confidence in descending order.
func (c *Classifier) Predict(input []float32) ([]Result, error) {
	m := c.model.Load()
	if !c.ready.Load() || m == nil {
		return nil, errUnavailable
	}

	predictions, err := m.invoke(input)
	if err != nil {
		return nil, errors.New(err).
			Component("classifier").
			Category(errors.CategoryInference).
			Build()
	}

	results, err := pairLabelsAndConfidence(Labels(), predictions)
	if err != nil {
		return nil, err
	}

	sortResults(results)
	return results, nil
}

// errUnavailable signals that the model is not ready; it stays internal
// because inference failures must never escape this package as errors.
var errUnavailable = fmt.Errorf("classification model not available")

// ClassifyFile classifies a stored capture image. The byte size of the
// original upload must be passed so the fallback heuristic works even when
// the file cannot be decoded. The returned Classification always carries a
// definite label; inference failures degrade to the fallback heuristic and
// are never surfaced to the caller.
func (c *Classifier) ClassifyFile(path string, sizeBytes int64) Classification {
	if c.ready.Load() {
		start := time.Now()
		label, confidence, err := c.inferFile(path)
		if err == nil {
			if c.metrics != nil {
				c.metrics.Classifier.ObserveInferenceDuration(time.Since(start))
				c.metrics.Classifier.IncrementClassification(label, MethodModel)
			}
			return Classification{Label: label, Method: MethodModel, Confidence: confidence}
		}

		c.logger.Warn("inference failed, using fallback heuristic",
			"path", path,
			"size_bytes", sizeBytes,
			"error", err)
		if c.metrics != nil {
			c.metrics.Classifier.IncrementInferenceErrors()
		}
	}

	label := c.FallbackLabel(sizeBytes)
	if c.metrics != nil {
		c.metrics.Classifier.IncrementClassification(label, MethodFallback)
	}
	return Classification{Label: label, Method: MethodFallback}
}

// inferFile decodes, resizes and classifies the image at path. Every failure
// is returned as an error value for the caller to branch on; nothing is
// swallowed here.
func (c *Classifier) inferFile(path string) (label string, confidence float64, err error) {
	input, err := c.prepareInput(path)
	if err != nil {
		return "", 0, err
	}

	results, err := c.Predict(input)
	if err != nil {
		return "", 0, err
	}
	if len(results) == 0 {
		return "", 0, fmt.Errorf("inference produced no results")
	}

	best := results[0]
	return best.Label, float64(best.Confidence), nil
}

// prepareInput decodes the image and converts it to the model's input format:
// a square RGB float32 tensor with pixel values scaled to [0,1].
func (c *Classifier) prepareInput(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.New(fmt.Errorf("decoding image: %w", err)).
			Component("classifier").
			Category(errors.CategoryImageDecode).
			FileContext(path, 0).
			Build()
	}

	size := c.inputSize()
	resized := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.ApproxBiLinear.Scale(resized, resized.Bounds(), img, img.Bounds(), draw.Src, nil)

	input := make([]float32, size*size*3)
	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			offset := resized.PixOffset(x, y)
			input[i] = float32(resized.Pix[offset]) / 255.0
			input[i+1] = float32(resized.Pix[offset+1]) / 255.0
			input[i+2] = float32(resized.Pix[offset+2]) / 255.0
			i += 3
		}
	}
	return input, nil
}

// sortResults sorts a slice of Result by their confidence in descending order.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
}

// pairLabelsAndConfidence pairs labels with their corresponding confidence values.
func pairLabelsAndConfidence(labels []string, preds []float32) ([]Result, error) {
	if len(labels) != len(preds) {
		return nil, fmt.Errorf("mismatched labels and predictions lengths: %d vs %d", len(labels), len(preds))
	}

	results := make([]Result, 0, len(labels))
	for i, label := range labels {
		results = append(results, Result{Label: label, Confidence: preds[i]})
	}
	return results, nil
}
