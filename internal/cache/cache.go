package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for a key/value tier. Implementations expose
// only get/set/delete; callers never iterate internal structure.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a stable cache key from arbitrary input text.
func Key(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "calverify:v1:" + hex.EncodeToString(hash[:])
}
