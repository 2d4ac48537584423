package ws

import "testing"

func TestHubBroadcast(t *testing.T) {
	h := newHub[int]()
	a := h.Subscribe(4)
	b := h.Subscribe(4)

	h.Broadcast(7)

	if got := <-a.Recv(); got != 7 {
		t.Errorf("sub a got %d", got)
	}
	if got := <-b.Recv(); got != 7 {
		t.Errorf("sub b got %d", got)
	}
}

func TestHubSlowSubscriberDrops(t *testing.T) {
	h := newHub[int]()
	slow := h.Subscribe(1)

	h.Broadcast(1)
	h.Broadcast(2) // dropped, buffer full

	if got := <-slow.Recv(); got != 1 {
		t.Errorf("got %d want 1", got)
	}
	select {
	case v := <-slow.Recv():
		t.Errorf("unexpected value %d", v)
	default:
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := newHub[int]()
	sub := h.Subscribe(1)
	h.Unsubscribe(sub)

	if _, ok := <-sub.Recv(); ok {
		t.Error("channel should be closed")
	}
	// Broadcasting after unsubscribe must not panic.
	h.Broadcast(3)
}
