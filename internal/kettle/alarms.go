package kettle

import "time"

// AlarmLog is a bounded, insertion-ordered event log. When full, the
// oldest entry is evicted. IDs increase monotonically across the life of
// the log, including across evictions.
// Not safe for concurrent use — the process controller serializes access.
type AlarmLog struct {
	capacity int
	nextID   uint64
	entries  []Alarm
}

func NewAlarmLog(capacity int) *AlarmLog {
	if capacity < 1 {
		capacity = 1
	}
	return &AlarmLog{
		capacity: capacity,
		nextID:   1,
		entries:  make([]Alarm, 0, capacity),
	}
}

// Append records a new alarm stamped with the wall clock and returns it.
func (l *AlarmLog) Append(sev Severity, msg string) Alarm {
	a := Alarm{
		ID:        l.nextID,
		Message:   msg,
		Severity:  sev,
		Timestamp: time.Now(),
	}
	l.nextID++

	if len(l.entries) == l.capacity {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, a)
	return a
}

// Entries returns the log oldest-first as a copy.
func (l *AlarmLog) Entries() []Alarm {
	out := make([]Alarm, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *AlarmLog) Len() int { return len(l.entries) }

// Reset empties the log. The ID counter keeps counting so entries stay
// distinguishable across resets.
func (l *AlarmLog) Reset() {
	l.entries = l.entries[:0]
}
