package cache

import "strings"

const (
	GlobalKeyPrefix = "essayhub"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// EvaluationKey addresses a cached evaluation. The title is part of the
// prompt, so it is keyed alongside the content.
func EvaluationKey(contentHash, titleHash, language string) string {
	return GenerateCacheKey("essay", "evaluation", contentHash, titleHash, language)
}

func UnreadCountKey(userID string) string {
	return GenerateCacheKey("notification", "unread", userID)
}

// NotificationChannel is the pub/sub channel carrying a user's live notifications.
func NotificationChannel(userID string) string {
	return strings.Join([]string{GlobalKeyPrefix, "notifications", userID}, ":")
}

// StatementsKey addresses generated statements by essay content hash.
func StatementsKey(contentHash string) string {
	return GenerateCacheKey("essay", "statements", contentHash)
}
