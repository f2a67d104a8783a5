package vision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"pettech-backend/internal/errs"
)

var (
	ErrDecode      = errors.New("image decode failed")
	ErrInference   = errors.New("inference failed")
	ErrIO          = errors.New("artifact io failed")
	ErrInvalidName = errors.New("invalid upload filename")
)

// Labels is ordered exactly as the model's output indices. Changing it
// requires re-exporting the model.
var Labels = [...]string{"Bacterial", "Fungal", "Healthy"}

// Prediction is a decoded engine output.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Result is a prediction plus where the uploaded image was stored.
type Result struct {
	Prediction
	StoredName string
	StoredPath string
	Cached     bool
}

// ResultCache memoizes predictions by image content.
type ResultCache interface {
	Get(ctx context.Context, key string) (Prediction, bool, error)
	Set(ctx context.Context, key string, p Prediction) error
}

// Observer receives one call per engine invocation.
type Observer interface {
	ObserveInference(d time.Duration, label string, err error)
}

type Options struct {
	Cache    ResultCache
	Observer Observer
	Logger   *slog.Logger
}

// Classifier is the upload → preprocess → infer pipeline. The engine is
// shared read-only by all requests.
type Classifier struct {
	engine   Engine
	store    *ArtifactStore
	size     int
	layout   Layout
	cache    ResultCache
	observer Observer
	logger   *slog.Logger
}

// NewClassifier checks that the engine expects inputSize x inputSize images.
func NewClassifier(engine Engine, store *ArtifactStore, inputSize int, opts Options) (*Classifier, error) {
	layout, size, err := LayoutFor(engine.InputShape())
	if err != nil {
		return nil, err
	}
	if size != inputSize {
		return nil, fmt.Errorf("model expects %dx%d input, configured %d", size, size, inputSize)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		engine:   engine,
		store:    store,
		size:     size,
		layout:   layout,
		cache:    opts.Cache,
		observer: opts.Observer,
		logger:   logger,
	}, nil
}

func (c *Classifier) Store() *ArtifactStore { return c.store }

// Classify persists data under a collision-safe version of requestedName and
// then runs it through the model.
func (c *Classifier) Classify(ctx context.Context, data []byte, requestedName string) (*Result, error) {
	name, err := c.store.Resolve(requestedName)
	if err != nil {
		return nil, err
	}
	storedPath, err := c.store.Save(name, data)
	if err != nil {
		return nil, err
	}
	result := &Result{StoredName: name, StoredPath: storedPath}

	key := contentKey(data)
	if c.cache != nil {
		p, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.Warn("prediction cache get failed", "err", errs.Loggable(err))
		} else if ok {
			result.Prediction = p
			result.Cached = true
			return result, nil
		}
	}

	p, err := c.predictFile(storedPath)
	if err != nil {
		return nil, err
	}
	result.Prediction = p

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, p); err != nil {
			c.logger.Warn("prediction cache set failed", "err", errs.Loggable(err))
		}
	}
	return result, nil
}

func (c *Classifier) predictFile(path string) (Prediction, error) {
	f, err := os.Open(path)
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	img, err := decodeImage(f)
	_ = f.Close()
	if err != nil {
		return Prediction{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	input := Preprocess(img, c.size, c.layout)

	start := time.Now()
	scores, err := c.engine.Run(input)
	var p Prediction
	if err == nil {
		p, err = DecodeOutput(scores)
	} else {
		err = fmt.Errorf("%w: %w", ErrInference, err)
	}
	if c.observer != nil {
		c.observer.ObserveInference(time.Since(start), p.Label, err)
	}
	return p, err
}

// DecodeOutput picks the highest score (first one on ties) and reports it as
// a percentage rounded to two decimals.
func DecodeOutput(scores []float32) (Prediction, error) {
	if len(scores) != len(Labels) {
		return Prediction{}, fmt.Errorf("%w: expected %d scores, got %d", ErrInference, len(Labels), len(scores))
	}

	best := 0
	for i, s := range scores {
		if math.IsNaN(float64(s)) {
			return Prediction{}, fmt.Errorf("%w: score %d is NaN", ErrInference, i)
		}
		if s > scores[best] {
			best = i
		}
	}

	confidence := math.Round(float64(scores[best])*100*100) / 100
	confidence = math.Max(0, math.Min(100, confidence))
	return Prediction{Label: Labels[best], Confidence: confidence}, nil
}

func contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
