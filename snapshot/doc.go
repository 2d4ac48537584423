// Package snapshot persists and restores a point-in-time image of the
// engine: every registered symbol, book binding, and resting order.
// Snapshots bound journal growth; the server restores the newest one
// and replays only the journal suffix behind it.
package snapshot
