package walletmethods

import (
	"fmt"
	"strings"

	"github.com/lightningnetwork/lnd/clock"
)

// StampLogEntry is one timestamped trace entry.
type StampLogEntry struct {
	Timestamp int64
	Message   string
}

// StampLog is an optional diagnostic trace, ported from
// original_source's utils/stamp_log.py. A nil *StampLog is a valid no-op,
// matching the Python default of an absent log dict. No operation in this
// module (createAction, processAction or any other) takes a StampLog or
// calls Stamp.
type StampLog struct {
	Entries []StampLogEntry
}

// Stamp appends a timestamped entry to log; a no-op when log is nil.
func Stamp(log *StampLog, clk clock.Clock, message string) {
	if log == nil {
		return
	}
	log.Entries = append(log.Entries, StampLogEntry{
		Timestamp: clk.Now().Unix(),
		Message:   message,
	})
}

// Format renders the log as "[timestamp] message" lines, one per entry.
func (l *StampLog) Format() string {
	if l == nil {
		return ""
	}
	var b strings.Builder
	for _, e := range l.Entries {
		fmt.Fprintf(&b, "[%d] %s\n", e.Timestamp, e.Message)
	}
	return b.String()
}
