package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AryanXCode646/Karyakshetra/internal/logger"
)

// DefaultPort is the TCP port the relay listens on when nothing else is set.
const DefaultPort = 8080

// Config holds relay configuration.
type Config struct {
	// Addr is the listen address for the HTTP/WebSocket server.
	Addr string
	// AllowedOrigins lists the web origins allowed to connect. "*" allows all.
	AllowedOrigins []string
	// JournalPath is the SQLite save journal. Empty disables the journal.
	JournalPath string
	// QueueSize bounds the relay's event queue.
	QueueSize int
	// SendQueueSize bounds each connection's outbound queue.
	SendQueueSize int
	// MaxMessageBytes is the largest inbound frame accepted. Bigger frames
	// close the connection.
	MaxMessageBytes int64
	// PingInterval is how often idle connections are pinged.
	PingInterval time.Duration
	LogLevel     logger.Level
	Debug        bool
}

// Overrides optionally overrides values from environment variables.
//
// A nil pointer means "use the environment/default value".
type Overrides struct {
	Addr           *string
	AllowedOrigins *[]string
	JournalPath    *string
	LogLevel       *string
	Debug          *bool
}

// Load loads relay configuration from environment variables and applies any
// explicit overrides.
func Load(overrides Overrides) (*Config, error) {
	port := DefaultPort
	if portStr := os.Getenv("PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", portStr)
		}
		port = p
	}

	addr := fmt.Sprintf(":%d", port)
	if v := os.Getenv("RELAY_ADDR"); v != "" {
		addr = v
	}
	if overrides.Addr != nil {
		addr = *overrides.Addr
	}

	origins := SplitList(os.Getenv("RELAY_ALLOWED_ORIGINS"))
	if overrides.AllowedOrigins != nil {
		origins = *overrides.AllowedOrigins
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	journalPath := os.Getenv("RELAY_JOURNAL_PATH")
	if overrides.JournalPath != nil {
		journalPath = *overrides.JournalPath
	}

	queueSize, err := intEnv("RELAY_QUEUE_SIZE", 1024)
	if err != nil {
		return nil, err
	}
	sendQueueSize, err := intEnv("RELAY_SEND_QUEUE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	maxMessage, err := intEnv("RELAY_MAX_MESSAGE_BYTES", 64<<20)
	if err != nil {
		return nil, err
	}

	pingInterval := 30 * time.Second
	if v := os.Getenv("RELAY_PING_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid RELAY_PING_INTERVAL %q", v)
		}
		pingInterval = d
	}

	debug := false
	if debugStr := os.Getenv("DEBUG"); debugStr == "true" || debugStr == "1" {
		debug = true
	}
	if overrides.Debug != nil {
		debug = *overrides.Debug
	}

	rawLevel := os.Getenv("RELAY_LOG_LEVEL")
	if overrides.LogLevel != nil {
		rawLevel = *overrides.LogLevel
	}
	level, err := logger.ParseLevel(rawLevel)
	if err != nil {
		return nil, err
	}
	if debug && rawLevel == "" {
		level = logger.LevelDebug
	}

	return &Config{
		Addr:            addr,
		AllowedOrigins:  origins,
		JournalPath:     journalPath,
		QueueSize:       queueSize,
		SendQueueSize:   sendQueueSize,
		MaxMessageBytes: int64(maxMessage),
		PingInterval:    pingInterval,
		LogLevel:        level,
		Debug:           debug,
	}, nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intEnv(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
