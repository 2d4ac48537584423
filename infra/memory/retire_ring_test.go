package memory

import "testing"

type thing struct{ id int }

func TestRetireRingBasic(t *testing.T) {
	r := NewRetireRing(4)
	o1 := &thing{id: 1}
	o2 := &thing{id: 2}

	if !r.Enqueue(o1) || !r.Enqueue(o2) {
		t.Fatal("enqueue failed unexpectedly")
	}
	if r.Dequeue() != o1 {
		t.Error("expected first dequeue to be o1")
	}
	if r.Dequeue() != o2 {
		t.Error("expected second dequeue to be o2")
	}
	if r.Dequeue() != nil {
		t.Error("expected empty ring to return nil")
	}
}

func TestRetireRingFull(t *testing.T) {
	r := NewRetireRing(2)
	if !r.Enqueue(&thing{}) || !r.Enqueue(&thing{}) {
		t.Fatal("ring should accept up to its capacity")
	}
	if r.Enqueue(&thing{}) {
		t.Error("full ring must reject enqueue")
	}
}

func TestReclaimRespectsActiveReaders(t *testing.T) {
	pool := NewPool(func() *thing { return &thing{} })
	ring := NewRetireRing(8)
	reader := NewReaderEpoch()

	retired := &thing{id: 7}
	if !ring.Enqueue(retired) {
		t.Fatal("enqueue failed")
	}

	// An active reader pins the object in the ring.
	reader.Enter()
	AdvanceEpochAndReclaim(ring, pool, reader)
	if ring.Dequeue() != retired {
		t.Fatal("object reclaimed under an active reader")
	}
	_ = ring.Enqueue(retired)

	// Once the reader exits, reclamation drains the ring.
	reader.Exit()
	AdvanceEpochAndReclaim(ring, pool, reader)
	if ring.Dequeue() != nil {
		t.Error("ring should be empty after reclamation")
	}
}
