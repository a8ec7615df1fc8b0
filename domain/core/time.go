package core

import (
	"time"
)

// Timestamp is a UTC instant stored as epoch milliseconds
type Timestamp time.Time

// Now returns the current timestamp
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// FromUnixMilli converts stored epoch milliseconds back into a Timestamp
func FromUnixMilli(ms int64) Timestamp {
	return Timestamp(time.UnixMilli(ms).UTC())
}

// Time returns the underlying time.Time
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// UnixMilli returns epoch milliseconds for storage
func (t Timestamp) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

// After returns true if t is after u
func (t Timestamp) After(u Timestamp) bool {
	return time.Time(t).After(time.Time(u))
}

// JSON marshaling for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tm time.Time
	if err := tm.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tm)
	return nil
}

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }
