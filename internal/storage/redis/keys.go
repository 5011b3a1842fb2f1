package redis

import "fmt"

// Key prefix for all morpion data
const keyPrefix = "morpion"

// sessionKey returns the Redis key for a Session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// SignupChannel is the Pub/Sub channel signup events are published on
func SignupChannel() string {
	return fmt.Sprintf("%s:events:signup", keyPrefix)
}
