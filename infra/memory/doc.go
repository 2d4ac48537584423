// Package memory provides the allocation primitives shared by the
// matching service: typed object pools, a lock-free retire ring, and
// global epoch tracking. Together they let the single-writer engine
// recycle order records while concurrent snapshot readers may still
// hold references, RCU style: released records park in the ring and
// return to the pool only once every reader has moved past the epoch
// in which they were retired.
package memory
