package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wastenet/wastenet-go/internal/conf"
)

func newTestClassifier(threshold int64) *Classifier {
	settings := &conf.Settings{}
	settings.Classifier.FallbackThresholdBytes = threshold
	return New(settings, nil)
}

func TestFallbackLabel(t *testing.T) {
	t.Parallel()

	// The heuristic only looks at the byte size of the upload; it is a weak
	// proxy for content and exists so ingest keeps working without a model.
	tests := []struct {
		name      string
		threshold int64
		sizeBytes int64
		want      string
	}{
		{
			name:      "large image maps to non-hazardous",
			threshold: 4000,
			sizeBytes: 6000,
			want:      LabelNonHazardous,
		},
		{
			name:      "small image maps to hazardous",
			threshold: 4000,
			sizeBytes: 1000,
			want:      LabelHazardous,
		},
		{
			name:      "exact threshold maps to non-hazardous",
			threshold: 4000,
			sizeBytes: 4000,
			want:      LabelNonHazardous,
		},
		{
			name:      "one byte below threshold maps to hazardous",
			threshold: 4000,
			sizeBytes: 3999,
			want:      LabelHazardous,
		},
		{
			name:      "zero size maps to hazardous",
			threshold: 4000,
			sizeBytes: 0,
			want:      LabelHazardous,
		},
		{
			name:      "unset threshold falls back to default",
			threshold: 0,
			sizeBytes: conf.DefaultFallbackThresholdBytes,
			want:      LabelNonHazardous,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClassifier(tt.threshold)
			assert.Equal(t, tt.want, c.FallbackLabel(tt.sizeBytes))
		})
	}
}

func TestFallbackLabelDeterministic(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(4000)
	first := c.FallbackLabel(2500)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.FallbackLabel(2500))
	}
}

func TestClassifyFileWithoutModel(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(4000)

	// No model loaded: even an unreadable path must yield a definite label
	// through the size heuristic.
	result := c.ClassifyFile("/nonexistent/capture.jpg", 6000)
	assert.Equal(t, LabelNonHazardous, result.Label)
	assert.Equal(t, MethodFallback, result.Method)
	assert.Zero(t, result.Confidence)

	result = c.ClassifyFile("/nonexistent/capture.jpg", 1000)
	assert.Equal(t, LabelHazardous, result.Label)
	assert.Equal(t, MethodFallback, result.Method)
}
