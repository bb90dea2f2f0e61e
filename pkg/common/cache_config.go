package common

// CacheConfig carries the redis connection settings shared by every
// component that opens a cache.
type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}
