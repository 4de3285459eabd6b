// Package inference - ONNX Runtime session plumbing for table-structure
// detection models.
package inference

import (
	"os"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/tablesense/go-table-detect/postprocess"
)

// DefaultOutputNames are the candidate output tensor names tried, in order,
// when a model does not use a conventional name. Exported CoreML->ONNX graphs
// frequently carry generated names like "var_914".
var DefaultOutputNames = []string{"var_914", "output0", "output"}

// modelInputName is the input tensor name the exported models declare.
const modelInputName = "image"

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

// EnsureRuntime initializes the shared ONNX Runtime environment once per
// process. The ONNXRUNTIME_SHARED_LIBRARY_PATH environment variable overrides
// the library location when the runtime is not on the default search path.
//
// Returns:
//   - error: The initialization error, repeated on every call after a failure.
func EnsureRuntime() error {
	runtimeOnce.Do(func() {
		if path := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); path != "" {
			ort.SetSharedLibraryPath(path)
		}
		runtimeErr = ort.InitializeEnvironment()
	})
	return runtimeErr
}

// ResolveModelPath locates a model file by trying the path as given and then
// with an .onnx extension appended.
//
// Arguments:
//   - path: The configured model path, with or without extension.
//
// Returns:
//   - string: The first existing candidate.
//   - error: If no candidate exists on disk.
func ResolveModelPath(path string) (string, error) {
	candidates := []string{path, path + ".onnx"}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.Errorf("model not found at any of %v", candidates)
}

// ResolveOutputName picks the first candidate name declared as an output by
// the model, falling back to the model's sole output when none of the
// candidates match.
//
// Arguments:
//   - modelPath: Path to the ONNX model file.
//   - candidates: Ordered output names to try.
//
// Returns:
//   - string: The resolved output tensor name.
//   - error: If the model's outputs cannot be read or no name resolves.
func ResolveOutputName(modelPath string, candidates []string) (string, error) {
	_, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return "", errors.Wrap(err, "reading model output info")
	}

	declared := make(map[string]bool, len(outputs))
	for _, out := range outputs {
		declared[out.Name] = true
	}
	for _, candidate := range candidates {
		if declared[candidate] {
			return candidate, nil
		}
	}
	if len(outputs) == 1 {
		return outputs[0].Name, nil
	}
	return "", errors.Errorf("no candidate in %v matches model outputs", candidates)
}

// Session wraps an ONNX Runtime session for a fixed-size square model input.
type Session struct {
	session    *ort.DynamicAdvancedSession
	outputName string
	targetSize int
}

// NewSession loads the model at path and prepares it for inference.
//
// Arguments:
//   - path: Model path, resolved via ResolveModelPath.
//   - targetSize: The model's square input side length in pixels.
//   - outputNames: Candidate output tensor names; nil uses DefaultOutputNames.
//
// Returns:
//   - *Session: The ready session.
//   - error: Runtime initialization, path resolution, or session creation
//     failures.
func NewSession(path string, targetSize int, outputNames []string) (*Session, error) {
	if err := EnsureRuntime(); err != nil {
		return nil, errors.Wrap(err, "initializing onnxruntime")
	}

	modelPath, err := ResolveModelPath(path)
	if err != nil {
		return nil, err
	}

	if outputNames == nil {
		outputNames = DefaultOutputNames
	}
	outputName, err := ResolveOutputName(modelPath, outputNames)
	if err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{modelInputName},
		[]string{outputName},
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating onnxruntime session")
	}

	return &Session{
		session:    session,
		outputName: outputName,
		targetSize: targetSize,
	}, nil
}

// Run executes the model on a prepared input tensor and copies the raw output
// into an OutputTensor owned by the caller.
//
// Arguments:
//   - input: CHW float32 input of length 3*targetSize*targetSize, as produced
//     by PrepareInput.
//
// Returns:
//   - *postprocess.OutputTensor: The raw detection tensor.
//   - error: Inference failures, propagated opaque and unretried.
func (s *Session) Run(input []float32) (*postprocess.OutputTensor, error) {
	side := int64(s.targetSize)
	inputTensor, err := ort.NewTensor(ort.NewShape(1, 3, side, side), input)
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}
	defer inputTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, errors.Wrap(err, "running inference")
	}
	defer outputs[0].Destroy()

	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Errorf("output %q is not a float32 tensor", s.outputName)
	}

	data := make([]float32, len(outputTensor.GetData()))
	copy(data, outputTensor.GetData())
	shape := outputTensor.GetShape()
	dims := make([]int64, len(shape))
	copy(dims, shape)

	return &postprocess.OutputTensor{Data: data, Shape: dims}, nil
}

// Close releases the resources associated with the Session.
func (s *Session) Close() {
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
