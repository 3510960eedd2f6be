//go:build onnx

package onnx

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"
	ort "github.com/yalue/onnxruntime_go"
)

var initOnce sync.Once
var initErr error

// Embedder runs a sentence-transformer ONNX model with mean pooling.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	tokenizer  *Tokenizer
	dimensions int
	maxLength  int
	logger     zerolog.Logger
}

// New loads the model and tokenizer. The ONNX runtime environment is
// initialised once per process.
func New(cfg Config) (*Embedder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	initOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, fmt.Errorf("initialise onnx runtime: %w", initErr)
	}

	tokenizer, err := LoadTokenizer(cfg.TokenizerPath)
	if err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	logger := cfg.Logger.With().Str("component", "onnx").Logger()
	logger.Debug().Str("model", cfg.ModelPath).Int("dims", cfg.Dimensions).Msg("loaded model")

	return &Embedder{
		session:    session,
		tokenizer:  tokenizer,
		dimensions: cfg.Dimensions,
		maxLength:  cfg.MaxLength,
		logger:     logger,
	}, nil
}

// Embed runs the whole batch through the model in one inference call,
// padding every sequence to the longest one.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := len(texts)
	ids := make([][]int64, batch)
	masks := make([][]int64, batch)
	seqLen := 0
	for i, text := range texts {
		ids[i], masks[i] = e.tokenizer.Encode(text, e.maxLength)
		seqLen = max(seqLen, len(ids[i]))
	}

	flatIDs := make([]int64, batch*seqLen)
	flatMask := make([]int64, batch*seqLen)
	for i := range ids {
		for j := range seqLen {
			if j < len(ids[i]) {
				flatIDs[i*seqLen+j] = ids[i][j]
				flatMask[i*seqLen+j] = masks[i][j]
			} else {
				flatIDs[i*seqLen+j] = e.tokenizer.pad
			}
		}
	}
	typeIDs := make([]int64, batch*seqLen)

	shape := ort.NewShape(int64(batch), int64(seqLen))
	idsTensor, err := ort.NewTensor(shape, flatIDs)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, flatMask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typeTensor, err := ort.NewTensor(shape, typeIDs)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	outputs := []ort.Value{nil}
	if err := e.session.Run([]ort.Value{idsTensor, maskTensor, typeTensor}, outputs); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}
	outShape := hidden.GetShape()
	if len(outShape) != 3 || outShape[0] != int64(batch) || outShape[2] != int64(e.dimensions) {
		return nil, fmt.Errorf("unexpected output shape %v", outShape)
	}

	e.logger.Debug().Int("batch", batch).Int("seq_len", seqLen).Msg("inference")
	return meanPool(hidden.GetData(), flatMask, batch, int(outShape[1]), e.dimensions), nil
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session == nil {
		return nil
	}
	return e.session.Destroy()
}

// meanPool averages token vectors over attended positions and normalises.
func meanPool(data []float32, mask []int64, batch, seqLen, hidden int) [][]float32 {
	out := make([][]float32, batch)
	for b := 0; b < batch; b++ {
		vec := make([]float32, hidden)
		var attended float32
		for s := 0; s < seqLen; s++ {
			if mask[b*seqLen+s] == 0 {
				continue
			}
			attended++
			offset := (b*seqLen + s) * hidden
			for h := 0; h < hidden; h++ {
				vec[h] += data[offset+h]
			}
		}
		if attended > 0 {
			for h := range vec {
				vec[h] /= attended
			}
		}
		out[b] = normalize(vec)
	}
	return out
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
