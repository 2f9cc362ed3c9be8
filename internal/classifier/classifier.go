// classifier.go waste classification model specific code
package classifier

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	tflite "github.com/tphakala/go-tflite"
	"github.com/wastenet/wastenet-go/internal/conf"
	"github.com/wastenet/wastenet-go/internal/cpuspec"
	"github.com/wastenet/wastenet-go/internal/errors"
	"github.com/wastenet/wastenet-go/internal/logging"
	"github.com/wastenet/wastenet-go/internal/observability"
)

// Classification labels in model output order. The model's output tensor must
// have exactly this many elements or the self-test rejects it.
const (
	LabelHazardous    = "Hazardous"
	LabelNonHazardous = "Non-Hazardous"
)

// Classification methods recorded on disposal records.
const (
	MethodModel    = "model"
	MethodFallback = "fallback"
)

// Labels returns the fixed label set in model output order.
func Labels() []string {
	return []string{LabelHazardous, LabelNonHazardous}
}

// Result pairs a label with its confidence from one inference.
type Result struct {
	Label      string
	Confidence float32
}

// Classification is the outcome of classifying one capture.
type Classification struct {
	Label      string
	Method     string
	Confidence float64 // 0 for fallback classifications
}

// Status describes the current model state for health reporting.
type Status struct {
	Ready        bool      `json:"ready"`
	ModelPath    string    `json:"modelPath"`
	InputSize    int       `json:"inputSize"`
	Labels       []string  `json:"labels"`
	LoadAttempts int       `json:"loadAttempts"`
	LastAttempt  time.Time `json:"lastAttempt,omitzero"`
	LastError    string    `json:"lastError,omitempty"`
}

// model owns a loaded TFLite interpreter. It is immutable after construction;
// the interpreter itself is serialized with a mutex because TFLite invocation
// is not thread safe.
type model struct {
	interpreter *tflite.Interpreter
	tfModel     *tflite.Model
	inputSize   int
	mu          sync.Mutex
}

// Classifier is the process-wide classification component. The model handle is
// published through an atomic pointer set at most twice (initial load and one
// retry); request handling only ever reads it.
type Classifier struct {
	settings *conf.Settings
	logger   *slog.Logger
	metrics  *observability.Metrics

	ready atomic.Bool
	model atomic.Pointer[model]

	loadAttempts atomic.Int32
	lastAttempt  atomic.Pointer[time.Time]
	lastError    atomic.Pointer[string]

	// loader timing overrides; zero means the package defaults
	retryDelay     time.Duration
	statusInterval time.Duration
}

// New creates a Classifier handle. The model is not loaded yet; call Load
// directly or start the asynchronous loader with StartLoader.
func New(settings *conf.Settings, metrics *observability.Metrics) *Classifier {
	logger := logging.ForService("classifier")
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		settings: settings,
		logger:   logger,
		metrics:  metrics,
	}
}

// Ready reports whether the model is loaded and passed its self-test.
func (c *Classifier) Ready() bool {
	return c.ready.Load()
}

// Status returns the current model state.
func (c *Classifier) Status() Status {
	s := Status{
		Ready:        c.ready.Load(),
		ModelPath:    c.settings.Model.Path,
		InputSize:    c.inputSize(),
		Labels:       Labels(),
		LoadAttempts: int(c.loadAttempts.Load()),
	}
	if t := c.lastAttempt.Load(); t != nil {
		s.LastAttempt = *t
	}
	if e := c.lastError.Load(); e != nil {
		s.LastError = *e
	}
	return s
}

func (c *Classifier) inputSize() int {
	if size := c.settings.Model.InputSize; size > 0 {
		return size
	}
	return conf.DefaultModelInputSize
}

// Load reads the model artifact, builds the interpreter, runs the self-test
// and publishes the ready flag. On any failure the model reference is
// discarded and the flag stays false.
func (c *Classifier) Load() error {
	start := time.Now()
	now := time.Now()
	c.lastAttempt.Store(&now)
	c.loadAttempts.Add(1)
	if c.metrics != nil {
		c.metrics.Classifier.IncrementModelLoadAttempts()
	}

	m, err := c.buildModel()
	if err != nil {
		msg := err.Error()
		c.lastError.Store(&msg)
		return err
	}

	if err := c.selfTest(m); err != nil {
		m.close()
		msg := err.Error()
		c.lastError.Store(&msg)
		return errors.New(fmt.Errorf("model self-test failed: %w", err)).
			Component("classifier").
			Category(errors.CategoryModelInit).
			ModelContext(c.settings.Model.Path, "").
			Timing("model-load", time.Since(start)).
			Build()
	}

	c.model.Store(m)
	c.ready.Store(true)
	empty := ""
	c.lastError.Store(&empty)
	if c.metrics != nil {
		c.metrics.Classifier.SetModelReady(true)
	}

	c.logger.Info("classification model initialized",
		"model", c.settings.Model.Path,
		"input_size", m.inputSize,
		"labels", len(Labels()),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// buildModel loads the TFLite artifact and allocates an interpreter for it.
func (c *Classifier) buildModel() (*model, error) {
	modelData, err := os.ReadFile(c.settings.Model.Path)
	if err != nil {
		return nil, errors.New(err).
			Component("classifier").
			Category(errors.CategoryModelLoad).
			ModelContext(c.settings.Model.Path, "").
			Build()
	}

	tfModel := tflite.NewModel(modelData)
	if tfModel == nil {
		return nil, errors.Newf("cannot load TensorFlow Lite model").
			Component("classifier").
			Category(errors.CategoryModelInit).
			ModelContext(c.settings.Model.Path, "").
			Context("model_size_kb", len(modelData)/1024).
			Build()
	}

	threads := c.determineThreadCount(c.settings.Model.Threads)

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(threads)
	options.SetErrorReporter(func(msg string, userData any) {
		logging.Error("TFLite error", "message", msg)
	}, nil)

	interpreter := tflite.NewInterpreter(tfModel, options)
	if interpreter == nil {
		tfModel.Delete()
		return nil, errors.Newf("cannot create interpreter").
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		tfModel.Delete()
		return nil, errors.Newf("tensor allocation failed").
			Component("classifier").
			Category(errors.CategoryModelInit).
			Build()
	}

	// The model data is no longer needed as TFLite keeps its own internal copy
	runtime.GC()

	c.logger.Debug("interpreter allocated",
		"threads", threads,
		"total_cpus", runtime.NumCPU())

	return &model{
		interpreter: interpreter,
		tfModel:     tfModel,
		inputSize:   c.inputSize(),
	}, nil
}

// selfTest runs a single dummy inference and verifies the output shape
// matches the label set.
func (c *Classifier) selfTest(m *model) error {
	size := m.inputSize
	dummy := make([]float32, size*size*3)
	for i := range dummy {
		dummy[i] = 1.0
	}

	predictions, err := m.invoke(dummy)
	if err != nil {
		return err
	}
	if len(predictions) != len(Labels()) {
		return fmt.Errorf("unexpected output shape: got %d values, want %d", len(predictions), len(Labels()))
	}
	return nil
}

// determineThreadCount decides the interpreter thread count from settings and
// system capacity.
func (c *Classifier) determineThreadCount(configured int) int {
	if configured > 0 {
		if configured > runtime.NumCPU() {
			return runtime.NumCPU()
		}
		return configured
	}

	spec := cpuspec.GetCPUSpec()
	return spec.GetOptimalThreadCount()
}

// Close releases the interpreter and model. The ready flag is cleared first so
// concurrent requests degrade to the fallback heuristic.
func (c *Classifier) Close() {
	c.ready.Store(false)
	if c.metrics != nil {
		c.metrics.Classifier.SetModelReady(false)
	}
	if m := c.model.Swap(nil); m != nil {
		m.close()
	}
}

// invoke runs one inference on a prepared input buffer and returns the raw
// output values.
func (m *model) invoke(input []float32) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inputTensor := m.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, fmt.Errorf("cannot get input tensor")
	}
	copy(inputTensor.Float32s(), input)

	if status := m.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("tensor invoke failed: %v", status)
	}

	outputTensor := m.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return nil, fmt.Errorf("cannot get output tensor")
	}
	return extractPredictions(outputTensor), nil
}

func (m *model) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.interpreter != nil {
		m.interpreter.Delete()
		m.interpreter = nil
	}
	if m.tfModel != nil {
		m.tfModel.Delete()
		m.tfModel = nil
	}
}

// extractPredictions extracts prediction results from a TensorFlow Lite tensor.
func extractPredictions(tensor *tflite.Tensor) []float32 {
	predSize := tensor.Dim(tensor.NumDims() - 1)
	predictions := make([]float32, predSize)
	copy(predictions, tensor.Float32s())
	return predictions
}
