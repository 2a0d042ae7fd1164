package redis

import "fmt"

const keyPrefix = "farmcloud"

// SettingsKey holds the cached settings singleton.
func SettingsKey() string {
	return keyPrefix + ":settings"
}

// OrderSequenceKey holds the last order number suffix issued for day (YYYYMMDD).
func OrderSequenceKey(day string) string {
	return fmt.Sprintf("%s:order_seq:%s", keyPrefix, day)
}

// RateLimitKey holds the sliding window of write requests for one client.
func RateLimitKey(client string) string {
	return fmt.Sprintf("%s:rate_limit:ip:%s", keyPrefix, client)
}
