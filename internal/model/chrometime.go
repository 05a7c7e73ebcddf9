package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// windowsToUnixMicros is the number of microseconds between 1601-01-01 and
// 1970-01-01, the offset between Chromium's epoch and Unix time.
const windowsToUnixMicros int64 = 11644473600 * 1_000_000

// ChromeTime is a Chromium bookmark timestamp: microseconds since
// 1601-01-01 UTC, stored in JSON as a decimal string.
type ChromeTime int64

// ChromeTimeFromTime converts t to a Chromium timestamp.
func ChromeTimeFromTime(t time.Time) ChromeTime {
	return ChromeTime(t.UnixMicro() + windowsToUnixMicros)
}

// Time converts the timestamp to a time.Time. Zero stays zero.
func (c ChromeTime) Time() time.Time {
	if c == 0 {
		return time.Time{}
	}
	return time.UnixMicro(int64(c) - windowsToUnixMicros)
}

func (c ChromeTime) String() string {
	return strconv.FormatInt(int64(c), 10)
}

func (c ChromeTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ChromeTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Some exporters write the number unquoted.
		var n int64
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return err
		}
		*c = ChromeTime(n)
		return nil
	}
	if s == "" {
		*c = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*c = ChromeTime(n)
	return nil
}
