package outbox

import "testing"

func TestOutboxLifecycle(t *testing.T) {
	ob, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ob.Close()

	if err := ob.Put(1, []byte("first")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := ob.Put(2, []byte("second")); err != nil {
		t.Fatalf("put: %v", err)
	}

	var seen []uint64
	err = ob.ScanState(StateNew, func(rec Record) error {
		seen = append(seen, rec.Seq)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("expected ordered pending entries, got %v", seen)
	}

	if err := ob.UpdateState(1, StateSent, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, err := ob.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.State != StateSent || rec.Retries != 1 {
		t.Fatalf("unexpected record after update: %+v", rec)
	}
	if string(rec.Payload) != "first" {
		t.Fatalf("payload lost across update: %q", rec.Payload)
	}

	seen = nil
	_ = ob.ScanState(StateNew, func(rec Record) error {
		seen = append(seen, rec.Seq)
		return nil
	})
	if len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("expected only seq 2 pending, got %v", seen)
	}

	if err := ob.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := ob.Get(1); err == nil {
		t.Fatal("expected missing record after delete")
	}
}
