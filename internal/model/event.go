// Package model defines core data structures for schedtrace.
package model

// Kind identifies a scheduler lifecycle event type.
type Kind uint8

const (
	KindUnknown Kind = iota

	// KindRelease marks a task instance becoming eligible to run.
	KindRelease

	// KindStart marks a task beginning execution.
	KindStart

	// KindComplete marks a task finishing execution.
	KindComplete

	// KindMiss marks a missed deadline.
	KindMiss

	// KindWDTPet is a watchdog liveness heartbeat.
	KindWDTPet

	// KindInfo is an informational record with no scheduling semantics.
	KindInfo
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRelease:
		return "RELEASE"
	case KindStart:
		return "START"
	case KindComplete:
		return "COMPLETE"
	case KindMiss:
		return "MISS"
	case KindWDTPet:
		return "WDT_PET"
	case KindInfo:
		return "INFO"
	default:
		return "UNKNOWN"
	}
}

// ParseKind parses a wire kind name. Unrecognized names map to KindUnknown.
func ParseKind(s string) Kind {
	switch s {
	case "RELEASE":
		return KindRelease
	case "START":
		return KindStart
	case "COMPLETE":
		return KindComplete
	case "MISS":
		return KindMiss
	case "WDT_PET":
		return KindWDTPet
	case "INFO":
		return KindInfo
	default:
		return KindUnknown
	}
}

// Event is one scheduler lifecycle record.
// Timestamps are milliseconds since boot, as emitted by the firmware logger.
// Events are immutable once extracted.
type Event struct {
	Timestamp int64
	Kind      Kind
	Task      string
	Extra     string
}
