package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache stores raw provider response bodies keyed by request identity.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a cache key from the parts that identify a provider request,
// typically method, URL, and request body. The parts are hashed so keys are
// filesystem-safe regardless of what the request contained.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "localaudit-v1-" + hex.EncodeToString(hash[:])
}
