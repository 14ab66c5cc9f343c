package observe

// Mailbox hands the newest published value to a slower consumer. Older
// values that were never received are dropped. Put must be called from a
// single goroutine at a time, which Hub.Publish callers already guarantee.
type Mailbox[T any] struct {
	ch chan T
}

func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, 1)}
}

// Put never blocks.
func (m *Mailbox[T]) Put(v T) {
	select {
	case m.ch <- v:
		return
	default:
	}
	select {
	case <-m.ch:
	default:
	}
	m.ch <- v
}

func (m *Mailbox[T]) C() <-chan T {
	return m.ch
}
