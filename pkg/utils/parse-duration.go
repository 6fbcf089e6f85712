package utils

import (
	"fmt"
	"time"
)

func ParseDurationString(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return time.Duration(0), fmt.Errorf("invalid time duration '%s' : %s", value, err.Error())
	}
	if d <= 0 {
		return time.Duration(0), fmt.Errorf("time duration '%s' must be positive", value)
	}
	return d, nil
}

// ParseDurationStringWithDefault is for optional config values: an empty
// string yields the fallback, anything else must parse.
func ParseDurationStringWithDefault(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return ParseDurationString(value)
}
