package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Host     string `env:"HOST,default=localhost"`
	Port     int    `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	// Empty keeps the search index in memory, it is rebuilt at boot.
	BlugeFilepath string `env:"BLUGE_FILEPATH"`

	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	JWTIssuer         string        `env:"JWT_ISSUER,default=room-chat"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`

	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	HeartbeatTimeout     time.Duration `env:"HEARTBEAT_TIMEOUT,default=10s"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS"`

	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=2s"`
	TelemetryBufferSize  int           `env:"TELEMETRY_BUFFER_SIZE,default=1024"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=10s"`
	LatencyThreshold     time.Duration `env:"LATENCY_THRESHOLD,default=500ms"`
	LowCapacityThreshold int           `env:"LOW_CAPACITY_THRESHOLD,default=10"`

	MaxContentLength  int  `env:"MAX_CONTENT_LENGTH,default=1000"`
	DefaultPageSize   int  `env:"DEFAULT_PAGE_SIZE,default=50"`
	MaxPageSize       int  `env:"MAX_PAGE_SIZE,default=100"`
	StrictMessageRead bool `env:"STRICT_MESSAGE_READ,default=false"`
	PresenceOnConnect bool `env:"PRESENCE_ON_CONNECT,default=true"`

	ModerationEnabled    bool   `env:"MODERATION_ENABLED,default=false"`
	CharacterReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
	CensoredWords        string `env:"CENSORED_WORDS"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE,default=120"`
	RateLimitBurst     int `env:"RATE_LIMIT_BURST,default=20"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// SplitList reads a comma separated variable, blanks are dropped.
func SplitList(raw string) []string {
	var res []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			res = append(res, part)
		}
	}
	return res
}
