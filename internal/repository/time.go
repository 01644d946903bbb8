package repository

import "time"

// timeFromUnix converts a stored Unix-seconds column back into a time.Time
// in UTC, since posts.created_at is persisted as an integer rather than a
// timestamptz — the original canister has no timezone concept, only a
// monotonic nanosecond counter, and Unix-seconds is the closest faithful
// stand-in that still sorts and compares correctly in SQL.
func timeFromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
