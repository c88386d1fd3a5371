package cache

import "time"

const (
	userKeyPrefix    = "user:"
	routineKeyPrefix = "routine:"
	revokedKeyPrefix = "revoked:"
)

const (
	UserTTL    = 5 * time.Minute
	RoutineTTL = 10 * time.Minute
)

func UserKey(userID string) string {
	return userKeyPrefix + userID
}

func RoutineKey(routineID string) string {
	return routineKeyPrefix + routineID
}

// RevokedTokenKey marks a signed-out token ID.
func RevokedTokenKey(jti string) string {
	return revokedKeyPrefix + jti
}

// RateLimitKey is the counter key for resource and caller id.
func RateLimitKey(resource, id string) string {
	return "rl:" + resource + ":" + id
}
