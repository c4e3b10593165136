package loader

// batch buffers split rows per table until the flush threshold is reached.
// Memory stays bounded by one batch worth of rows regardless of input size.
type batch struct {
	size     int
	pending  int // records added since the last drain
	movies   [][]any
	children map[string][][]any
}

func newBatch(size int) *batch {
	return &batch{
		size:     size,
		movies:   make([][]any, 0, size),
		children: make(map[string][][]any),
	}
}

func (b *batch) add(movieRow []any, children childRows) {
	b.movies = append(b.movies, movieRow)
	for table, rows := range children {
		b.children[table] = append(b.children[table], rows...)
	}
	b.pending++
}

func (b *batch) shouldFlush() bool {
	return b.pending >= b.size
}

// drain returns everything accumulated and resets the buffers. Call exactly
// once per flush cycle, immediately followed by a Writer flush.
func (b *batch) drain() ([][]any, map[string][][]any) {
	movies, children := b.movies, b.children
	b.movies = make([][]any, 0, b.size)
	b.children = make(map[string][][]any)
	b.pending = 0
	return movies, children
}
