package embedding

// Embedder converts free text into a fixed-dimension numeric vector.
// Implementations may require a preparation phase over the corpus. State and
// Restore carry prepared state across process restarts so that a reloaded
// index can embed queries without re-reading the original corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
	State() ([]byte, error)
	Restore(state []byte) error
}
