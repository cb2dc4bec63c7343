package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScanResult is one device sighting reported by the external scanner.
// It is ephemeral; only the derived Event is persisted.
type ScanResult struct {
	MAC    string `json:"mac"`
	IP     string `json:"ip"`
	Vendor string `json:"hw"`
}

// Field is one key/value pair of an Event. Fields keep their append order,
// which a plain map would lose.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is one immutable entry in an append-only stream.
type Event struct {
	Stream string  `json:"stream"`
	ID     EventID `json:"id"`
	Fields []Field `json:"fields"`
}

// EventID is a store-assigned stream identifier, strictly increasing within
// a stream. Wire form is "<millisecond_timestamp>-<sequence>".
type EventID struct {
	TimestampMS int64
	Sequence    uint64
}

func (id EventID) String() string {
	return fmt.Sprintf("%d-%d", id.TimestampMS, id.Sequence)
}

// Time returns the timestamp half of the identifier.
func (id EventID) Time() time.Time {
	return time.UnixMilli(id.TimestampMS)
}

// Before reports whether id precedes other in stream order.
func (id EventID) Before(other EventID) bool {
	if id.TimestampMS != other.TimestampMS {
		return id.TimestampMS < other.TimestampMS
	}

	return id.Sequence < other.Sequence
}

// ParseEventID parses the wire form "<ms>-<seq>".
func ParseEventID(s string) (EventID, error) {
	tsPart, seqPart, found := strings.Cut(s, "-")
	if !found {
		return EventID{}, fmt.Errorf("%w: malformed event id %q", ErrBadEventID, s)
	}

	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return EventID{}, fmt.Errorf("%w: bad timestamp in %q: %w", ErrBadEventID, s, err)
	}

	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return EventID{}, fmt.Errorf("%w: bad sequence in %q: %w", ErrBadEventID, s, err)
	}

	return EventID{TimestampMS: ts, Sequence: seq}, nil
}

// FoldMAC case-folds a hardware address into the lower-case colon-separated
// form used as the join key across all state. Scanners disagree on separator
// and case, so hyphens become colons. Folding never fails; it does not
// validate.
func FoldMAC(raw string) string {
	folded := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(folded, "-", ":")
}

// NormalizeMAC folds and validates a hardware address. Length is not
// enforced: partial addresses still key a stream.
func NormalizeMAC(raw string) (string, error) {
	folded := FoldMAC(raw)
	if folded == "" {
		return "", fmt.Errorf("%w: empty hardware address", ErrInvalidScanRecord)
	}

	for _, r := range folded {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && r != ':' {
			return "", fmt.Errorf("%w: hardware address %q", ErrInvalidScanRecord, raw)
		}
	}

	return folded, nil
}
