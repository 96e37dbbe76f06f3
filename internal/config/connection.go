package config

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rowantrollope/redis-fs-events/internal/watch"
	flag "github.com/spf13/pflag"
)

// Config holds all connection and runtime configuration.
type Config struct {
	Host     string
	Port     int
	Socket   string
	Password string
	DB       int
	URI      string

	TLS    bool
	CACert string
	Cert   string
	Key    string

	Volume  string
	JSON    bool
	NoColor bool
	Color   bool

	HistoryFile string

	// Attribution for local notifications
	User    string
	Message string

	// Watching
	ConfigFile     string
	Roots          []string // from the config file; single-command args are in Args
	Ignore         []string
	Kinds          []string
	IgnoreSessions []string
	Debounce       time.Duration
	MaxWait        time.Duration
	PollInterval   time.Duration
	Repeated       string
	NoQueue        bool

	LogLevel string
	Verbose  bool

	// Remaining args after flag parsing (single-command mode)
	Args []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	histFile := home + "/.redis-fs-events_history"
	if env := os.Getenv("REDIS_FS_EVENTS_HISTORY"); env != "" {
		histFile = env
	}

	volume := "main"
	if env := os.Getenv("REDIS_FS_VOLUME"); env != "" {
		volume = env
	}

	password := ""
	if env := os.Getenv("REDISCLI_AUTH"); env != "" {
		password = env
	}

	user := os.Getenv("REDIS_FS_USER")
	if user == "" {
		user = os.Getenv("USER")
	}

	return &Config{
		Host:         "127.0.0.1",
		Port:         6379,
		DB:           0,
		Password:     password,
		Volume:       volume,
		HistoryFile:  histFile,
		User:         user,
		ConfigFile:   os.Getenv("REDIS_FS_EVENTS_CONFIG"),
		Debounce:     100 * time.Millisecond,
		MaxWait:      time.Second,
		PollInterval: 500 * time.Millisecond,
		Repeated:     watch.RepeatedBatch.String(),
		LogLevel:     "warn",
	}
}

// RegisterFlags registers CLI flags on the given flag set.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVarP(&c.Host, "host", "h", c.Host, "Server hostname")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "Server port")
	fs.StringVarP(&c.Socket, "socket", "s", c.Socket, "Unix socket path")
	fs.StringVarP(&c.Password, "password", "a", c.Password, "Password")
	fs.IntVarP(&c.DB, "db", "n", c.DB, "Database number")
	fs.StringVarP(&c.URI, "uri", "u", c.URI, "Server URI (redis://...)")

	fs.BoolVar(&c.TLS, "tls", false, "Enable TLS")
	fs.StringVar(&c.CACert, "cacert", "", "CA certificate file")
	fs.StringVar(&c.Cert, "cert", "", "Client certificate file")
	fs.StringVar(&c.Key, "key", "", "Client key file")

	fs.BoolVar(&c.JSON, "json", false, "JSON output mode")
	fs.BoolVar(&c.NoColor, "no-color", false, "Disable colors")
	fs.BoolVar(&c.Color, "color", false, "Force colors")
	fs.StringVar(&c.Volume, "volume", c.Volume, "Filesystem volume name")

	fs.StringVar(&c.User, "user", c.User, "User attributed to local changes")
	fs.StringVarP(&c.Message, "message", "m", c.Message, "Message attached to local changes")
	fs.StringVarP(&c.ConfigFile, "config", "c", c.ConfigFile, "YAML config file")
	fs.StringSliceVar(&c.Ignore, "ignore", c.Ignore, "Ignore pattern (repeatable)")
	fs.StringSliceVar(&c.Kinds, "kinds", c.Kinds, "Only keep these kinds (modify,create,rename,delete)")
	fs.StringSliceVar(&c.IgnoreSessions, "ignore-session", c.IgnoreSessions, "Drop changes made by this session id")
	fs.DurationVar(&c.Debounce, "debounce", c.Debounce, "Quiet period that ends a poll cycle")
	fs.DurationVar(&c.MaxWait, "max-wait", c.MaxWait, "Longest a poll cycle may stay open")
	fs.DurationVar(&c.PollInterval, "poll-interval", c.PollInterval, "Redis queue poll interval")
	fs.StringVar(&c.Repeated, "repeated", c.Repeated, "Policy for one path changed several times: batch, drop or first")
	fs.BoolVar(&c.NoQueue, "no-queue", false, "Do not drain the Redis notification queue")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug, info, warn or error")
	fs.BoolVarP(&c.Verbose, "verbose", "v", false, "Shorthand for --log-level debug")
}

// RedisOptions builds a go-redis Options from the config.
func (c *Config) RedisOptions() *redis.Options {
	if c.URI != "" {
		opts, err := redis.ParseURL(c.URI)
		if err == nil {
			if c.DB != 0 {
				opts.DB = c.DB
			}
			return opts
		}
	}

	addr := c.Host + ":" + strconv.Itoa(c.Port)
	opts := &redis.Options{
		Addr:     addr,
		Password: c.Password,
		DB:       c.DB,
	}

	if c.Socket != "" {
		opts.Network = "unix"
		opts.Addr = c.Socket
	}

	if c.TLS {
		opts.TLSConfig = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	return opts
}

// Addr returns a display-friendly connection address.
func (c *Config) Addr() string {
	if c.URI != "" {
		return c.URI
	}
	if c.Socket != "" {
		return c.Socket
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ShouldColor returns true if color output should be enabled.
func (c *Config) ShouldColor() bool {
	if c.NoColor {
		return false
	}
	if c.Color {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

// Level returns the slog level selected by --log-level and --verbose.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// RepeatedPolicy parses --repeated.
func (c *Config) RepeatedPolicy() (watch.RepeatedChangePolicy, error) {
	return watch.ParseRepeatedChangePolicy(c.Repeated)
}

// WatchKinds parses --kinds.
func (c *Config) WatchKinds() ([]watch.Kind, error) {
	var kinds []watch.Kind
	for _, s := range c.Kinds {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k, err := watch.ParseKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
