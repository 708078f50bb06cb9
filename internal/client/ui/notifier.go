package ui

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// WriterNotifier prints toasts as single lines to w.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Success(_ context.Context, msg string) {
	n.write("✓", msg)
}

func (n *WriterNotifier) Error(_ context.Context, msg string) {
	n.write("✗", msg)
}

func (n *WriterNotifier) write(mark, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintf(n.w, "%s %s\n", mark, msg)
}
