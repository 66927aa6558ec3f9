package common

import (
	"time"
)

// CurrentTimestamp returns the current timestamp as ISO 8601 string
func CurrentTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NowUnix returns current Unix timestamp in seconds. All ledger timestamps are
// Unix epoch seconds.
func NowUnix() int64 {
	return time.Now().Unix()
}

// UnixToTime converts a Unix seconds timestamp to time.Time (UTC)
func UnixToTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
