package console

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Notifier prints each message on its own line, prefixed with the assistant name.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, err := fmt.Fprintf(n.out, "nova: %s\n", message); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}
