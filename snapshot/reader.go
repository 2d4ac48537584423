package snapshot

import "tycho/infra/memory"

// Reader is a thin adapter over memory.ReaderEpoch marking the bounds
// of a consistent read section. Epoching and reclamation themselves
// live in infra/memory.
type Reader struct {
	epoch *memory.ReaderEpoch
}

func NewReader() *Reader {
	return &Reader{epoch: memory.NewReaderEpoch()}
}

// Begin marks the start of a consistent read.
func (r *Reader) Begin() { r.epoch.Enter() }

// End marks the end of a read section.
func (r *Reader) End() { r.epoch.Exit() }

// Epoch exposes the underlying epoch for reclaimers.
func (r *Reader) Epoch() *memory.ReaderEpoch { return r.epoch }
