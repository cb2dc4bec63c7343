package eventlog

import (
	"strconv"
	"time"

	"github.com/carverauto/whodis/pkg/models"
)

// Stream key layout, shared with the original data written by earlier
// deployments: one aggregate stream plus one stream per hardware address.
const (
	// AggregateStream records one combined event per ingestion batch.
	AggregateStream = "mac_ts"

	entityStreamPrefix = "mac_ts_"
)

// EntityStream returns the per-device stream key for a normalized hardware
// address.
func EntityStream(mac string) string {
	return entityStreamPrefix + mac
}

// Bound is one end of a range query. The zero value is not valid; use the
// constructors.
type Bound struct {
	raw string
}

// Start bounds a range at the beginning of the log.
func Start() Bound { return Bound{raw: "-"} }

// End bounds a range at the end of the log.
func End() Bound { return Bound{raw: "+"} }

// AtTime bounds a range at a wall-clock instant, millisecond precision.
func AtTime(t time.Time) Bound {
	return Bound{raw: strconv.FormatInt(t.UnixMilli(), 10)}
}

// AtID bounds a range at an exact event identifier.
func AtID(id models.EventID) Bound {
	return Bound{raw: id.String()}
}

func (b Bound) String() string { return b.raw }

// IsReservedField reports whether an event field key is store bookkeeping
// rather than device data. Reserved keys are excluded from device counting.
func IsReservedField(key string) bool {
	return len(key) > 0 && key[0] == '_'
}

// EmptyBatchField marks an aggregate event for a batch that accepted no
// devices. The store rejects events with zero fields, so empty batches carry
// this single reserved field instead.
const EmptyBatchField = "_empty"
