// consts.go configuration constants shared across the application
package conf

// DefaultFallbackThresholdBytes is the byte-size cutoff used by the fallback
// classification heuristic when model inference is unavailable. Uploads at or
// above the threshold classify as Non-Hazardous, below as Hazardous. The value
// mirrors the camera firmware's typical frame sizes and is a tunable, not a
// law of nature.
const DefaultFallbackThresholdBytes int64 = 4000

// DefaultModelInputSize is the square input resolution of the bundled model.
const DefaultModelInputSize = 224
