package observe

import "testing"

func TestMailbox(t *testing.T) {
	t.Run("keeps only the newest value", func(t *testing.T) {
		m := NewMailbox[int]()
		m.Put(1)
		m.Put(2)
		m.Put(3)

		if got := <-m.C(); got != 3 {
			t.Fatalf("expected 3, got %d", got)
		}
		select {
		case v := <-m.C():
			t.Fatalf("expected empty mailbox, got %d", v)
		default:
		}
	})

	t.Run("fed by a hub", func(t *testing.T) {
		h := NewHub[string]()
		m := NewMailbox[string]()
		sub := h.Subscribe(m.Put)
		defer sub.Close()

		h.Publish("a")
		h.Publish("b")
		if got := <-m.C(); got != "b" {
			t.Fatalf("expected b, got %s", got)
		}
	})
}
