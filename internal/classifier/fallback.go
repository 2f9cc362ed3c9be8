package classifier

import "github.com/wastenet/wastenet-go/internal/conf"

// FallbackLabel classifies solely from the byte size of the original upload.
// Sizes at or above the configured threshold map to Non-Hazardous, sizes
// below to Hazardous. Deterministic and side-effect free: the same size
// always yields the same label, independent of image content.
func (c *Classifier) FallbackLabel(sizeBytes int64) string {
	threshold := c.settings.Classifier.FallbackThresholdBytes
	if threshold <= 0 {
		threshold = conf.DefaultFallbackThresholdBytes
	}
	return fallbackLabel(sizeBytes, threshold)
}

func fallbackLabel(sizeBytes, threshold int64) string {
	if sizeBytes >= threshold {
		return LabelNonHazardous
	}
	return LabelHazardous
}
