package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

const (
	EnvAddr           = "SEABATTLE_ADDR"
	EnvGridWidth      = "SEABATTLE_GRID_WIDTH"
	EnvGridHeight     = "SEABATTLE_GRID_HEIGHT"
	EnvAdversaryDelay = "SEABATTLE_ADVERSARY_DELAY"
	EnvMaxMatches     = "SEABATTLE_MAX_MATCHES"
	EnvLogLevel       = "SEABATTLE_LOG_LEVEL"
	EnvTelemetry      = "SEABATTLE_TELEMETRY"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Addr string

	GridWidth  int64
	GridHeight int64

	// Pause before each adversary move. Zero makes the adversary answer
	// before the human's attack request returns.
	AdversaryDelay time.Duration

	MaxMatches int64
	LogLevel   log.Level

	// Export traces over OTLP/HTTP, configured by the standard OTEL_* variables.
	Telemetry bool
}

func Default() Config {
	return Config{
		Addr:           "127.0.0.1:4239",
		GridWidth:      10,
		GridHeight:     10,
		AdversaryDelay: 700 * time.Millisecond,
		MaxMatches:     64,
		LogLevel:       log.InfoLevel,
	}
}

// Reads the given dotenv files (".env" if none) and the process
// environment, the latter taking precedence. Missing files are skipped.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	dotenv := map[string]string{}

	for _, file := range files {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalid, file, err)
		}

		for k, v := range values {
			dotenv[k] = v
		}
	}

	return FromEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
}

func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	p.strVar(EnvAddr, &c.Addr)
	p.intVar(EnvGridWidth, &c.GridWidth)
	p.intVar(EnvGridHeight, &c.GridHeight)
	p.durationVar(EnvAdversaryDelay, &c.AdversaryDelay)
	p.intVar(EnvMaxMatches, &c.MaxMatches)
	p.levelVar(EnvLogLevel, &c.LogLevel)
	p.boolVar(EnvTelemetry, &c.Telemetry)

	if p.err != nil {
		return Config{}, p.err
	}

	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return fmt.Errorf("%w: grid size must be positive, got [%d %d]", ErrInvalid, c.GridWidth, c.GridHeight)
	}

	if c.AdversaryDelay < 0 {
		return fmt.Errorf("%w: negative adversary delay %s", ErrInvalid, c.AdversaryDelay)
	}

	if c.MaxMatches <= 0 {
		return fmt.Errorf("%w: max matches must be positive, got %d", ErrInvalid, c.MaxMatches)
	}

	return nil
}

// Stops at the first error.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}

	v, ok := p.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (p *parser) fail(key, value string, err error) {
	p.err = fmt.Errorf("%w: %s=%q: %w", ErrInvalid, key, value, err)
}

func (p *parser) strVar(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) intVar(key string, dst *int64) {
	v, ok := p.get(key)
	if !ok {
		return
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = n
}

func (p *parser) durationVar(key string, dst *time.Duration) {
	v, ok := p.get(key)
	if !ok {
		return
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = d
}

func (p *parser) boolVar(key string, dst *bool) {
	v, ok := p.get(key)
	if !ok {
		return
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = b
}

func (p *parser) levelVar(key string, dst *log.Level) {
	v, ok := p.get(key)
	if !ok {
		return
	}

	l, err := log.ParseLevel(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = l
}
