package cache

import (
	"os"
	"path/filepath"
	"time"
)

// LayeredCache keeps a hot in-memory layer in front of a persistent disk
// layer. Disk hits are promoted to memory so repeated audits of the same
// business within a session stay off the network and off the disk.
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a layered cache. An empty diskDir falls back to
// the user cache directory, or a temp directory as a last resort.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	if diskDir == "" {
		diskDir = defaultDir()
	}
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk, promoting disk hits to memory
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		return val, true
	}
	if val, found := c.disk.Get(key); found {
		c.memory.Set(key, val, 0)
		return val, true
	}
	return nil, false
}

// Set stores a value in both layers with the same TTL
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	c.memory.Clear()
	return c.disk.Clear()
}

func defaultDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "localaudit")
	}
	return filepath.Join(os.TempDir(), "localaudit-cache")
}
