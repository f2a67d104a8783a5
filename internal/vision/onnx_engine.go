package vision

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXEngine runs an exported ONNX model through onnxruntime. The session and
// its tensors are allocated once and reused, so Run is serialized.
type ONNXEngine struct {
	mu sync.Mutex

	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	inputShape []int64
}

// NewONNXEngine loads the shared library (libPath may be empty for the
// default), the model, and allocates input/output tensors.
func NewONNXEngine(modelPath, libPath string) (*ONNXEngine, error) {
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("onnx init environment: %w", err)
		}
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx get input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("onnx model has no inputs or outputs")
	}

	inputShape := fixedShape(inputs[0].Dimensions)
	inputTensor, err := ort.NewEmptyTensor[float32](ort.Shape(inputShape))
	if err != nil {
		return nil, fmt.Errorf("onnx new input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.Shape(fixedShape(outputs[0].Dimensions)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("onnx new output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		outputTensor.Destroy()
		inputTensor.Destroy()
		return nil, fmt.Errorf("onnx new session: %w", err)
	}

	return &ONNXEngine{
		session:    session,
		input:      inputTensor,
		output:     outputTensor,
		inputShape: inputShape,
	}, nil
}

func (e *ONNXEngine) InputShape() []int64 {
	return append([]int64(nil), e.inputShape...)
}

func (e *ONNXEngine) Run(input []float32) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inData := e.input.GetData()
	if len(inData) != len(input) {
		return nil, fmt.Errorf("input tensor size %d != preprocessed %d", len(inData), len(input))
	}
	copy(inData, input)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}
	// The output tensor is reused by the next Run.
	return append([]float32(nil), e.output.GetData()...), nil
}

func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var closeErr error
	if e.session != nil {
		if err := e.session.Destroy(); err != nil {
			closeErr = err
		}
		e.session = nil
	}
	if e.input != nil {
		if err := e.input.Destroy(); err != nil {
			closeErr = err
		}
		e.input = nil
	}
	if e.output != nil {
		if err := e.output.Destroy(); err != nil {
			closeErr = err
		}
		e.output = nil
	}
	return closeErr
}

// fixedShape pins dynamic dimensions (batch) to 1.
func fixedShape(dims []int64) []int64 {
	out := make([]int64, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		out[i] = d
	}
	return out
}
