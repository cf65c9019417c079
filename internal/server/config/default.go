package config

import "time"

// Default configuration values.
const (
	DefaultRESPAddr     = "127.0.0.1:6379"
	DefaultWriteTimeout = 30 * time.Second
	DefaultBufferSize   = 512
	DefaultHTTPAddr     = "127.0.0.1:9121"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration. Persistence, sweeping,
// rate limiting and the admin endpoint are all off.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			RESP: RESPConfig{
				Addr:         DefaultRESPAddr,
				WriteTimeout: DefaultWriteTimeout,
				BufferSize:   DefaultBufferSize,
			},
			HTTP: HTTPConfig{
				Enabled: false,
				Addr:    DefaultHTTPAddr,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
