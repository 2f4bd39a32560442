package core

import "time"

// Timestamp is the canonical time type for domain records
type Timestamp time.Time

// Now returns the current timestamp in UTC
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

// Time converts back to the standard library type
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// String renders the timestamp in RFC3339
func (t Timestamp) String() string {
	return time.Time(t).Format(time.RFC3339)
}

// MarshalJSON renders the timestamp as an RFC3339 string
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return time.Time(t).MarshalJSON()
}

// UnmarshalJSON parses an RFC3339 string
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tt time.Time
	if err := tt.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = Timestamp(tt)
	return nil
}
