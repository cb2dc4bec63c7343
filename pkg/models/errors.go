package models

import "errors"

// Error taxonomy for the ingestion and aggregation paths. Callers branch on
// these with errors.Is; everything else wraps one of them.
var (
	// ErrStoreUnavailable marks a transient store failure. The caller of the
	// pipeline retries on the next trigger; nothing retries internally.
	ErrStoreUnavailable = errors.New("presence store unavailable")

	// ErrScanFailed marks a failed external scan. The cycle is skipped.
	ErrScanFailed = errors.New("device scan failed")

	// ErrInvalidScanRecord marks a malformed scan record. The record is
	// dropped and the batch continues.
	ErrInvalidScanRecord = errors.New("invalid scan record")

	// ErrSnapshotIO marks an unreadable or unwritable snapshot target.
	// Surfaced to the operator, never retried.
	ErrSnapshotIO = errors.New("snapshot io failed")

	// ErrSnapshotInvalid marks a snapshot document that does not validate.
	// Nothing is applied from an invalid document.
	ErrSnapshotInvalid = errors.New("invalid snapshot document")

	// ErrBadEventID marks an event identifier the store handed back that
	// does not parse as "<ms>-<seq>".
	ErrBadEventID = errors.New("bad event id")
)
