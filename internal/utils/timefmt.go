package utils

import (
	"time"
)

const (
	timestampLayout = "2006-01-02 15:04"
	// ReleaseTimeZone is the location release timestamps are rendered in.
	ReleaseTimeZone = "Europe/Berlin"
)

// FormatTimestamp returns the provided time formatted using the local time zone
// and a layout that includes date and minutes (locale-sensitive via system TZ).
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(timestampLayout)
}

// FormatReleaseTimestamp renders value in ReleaseTimeZone. When the zone database
// is unavailable the local zone is used instead.
func FormatReleaseTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	location, locationError := time.LoadLocation(ReleaseTimeZone)
	if locationError != nil {
		return FormatTimestamp(value)
	}
	return value.In(location).Format(timestampLayout)
}
