package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
)

const fileName = "snapshot.bin"

// Writer persists engine images into its directory, atomically
// replacing the previous one.
type Writer struct {
	Dir string
}

func (w *Writer) Write(state *State) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(w.Dir, "snapshot-*.tmp")
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(tmp).Encode(state); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(w.Dir, fileName))
}
