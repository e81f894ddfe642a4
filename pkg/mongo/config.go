package mongo

import "time"

// ClientOption configures Client.
type ClientOption func(*ClientConfig)

// ClientConfig holds MongoDB configuration.
type ClientConfig struct {
	URI             string
	Database        string
	ConnectTimeout  time.Duration
	QueryTimeout    time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// WithURI sets the connection string.
func WithURI(uri string) ClientOption {
	return func(c *ClientConfig) { c.URI = uri }
}

// WithDatabase sets the database name.
func WithDatabase(name string) ClientOption {
	return func(c *ClientConfig) { c.Database = name }
}

// WithTimeouts sets connect and per-query timeouts. Zero values keep the defaults.
func WithTimeouts(connect, query time.Duration) ClientOption {
	return func(c *ClientConfig) {
		if connect > 0 {
			c.ConnectTimeout = connect
		}
		if query > 0 {
			c.QueryTimeout = query
		}
	}
}

// WithPool sets connection pool bounds.
func WithPool(minSize, maxSize uint64, maxIdle time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.MinPoolSize = minSize
		if maxSize > 0 {
			c.MaxPoolSize = maxSize
		}
		if maxIdle > 0 {
			c.MaxConnIdleTime = maxIdle
		}
	}
}
