package splitter

import "context"

// InferenceSession abstracts the ONNX token-classification model used by the
// neural strategy. Run returns one [not_boundary, is_boundary] logit pair per
// input position, including the CLS and SEP wrappers.
type InferenceSession interface {
	Run(ctx context.Context, inputIDs, attentionMask, tokenTypeIDs []int64) ([][]float32, error)
}
