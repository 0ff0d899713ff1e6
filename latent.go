package motif

import "context"

type (
	// Vector is a point in the latent space of a generative model.
	Vector []float32

	// GenerativeModel encodes note sequences into latent vectors and decodes
	// latent vectors back into quantized note sequences. Encode and Decode
	// are batched and preserve the order of their inputs. Initialize must
	// succeed before Encode or Decode is called; implementations may block in
	// all three methods.
	GenerativeModel interface {
		Initialize(ctx context.Context) error
		Encode(ctx context.Context, seqs []Sequence) ([]Vector, error)
		Decode(ctx context.Context, zs []Vector) ([]Sequence, error)
	}
)
