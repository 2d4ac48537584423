// Package service is the only write entry point into the system. It
// coordinates the matching engine with the command journal, the event
// outbox, the trade feed, pooled memory, and snapshotting. Nothing
// else mutates engine state.
package service
