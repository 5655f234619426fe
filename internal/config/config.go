package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config is the full run configuration. It is loaded once by the
// orchestrator and passed down explicitly; no package reads the
// environment on its own.
type Config struct {
	// CalendarURL is the ICS feed endpoint containing the user's calendar.
	CalendarURL string `env:"GOOGLE_CALENDAR_ICS_URL,required"`

	// Recipient is the contact identifier (phone number or iMessage
	// handle) that notifications are sent to.
	Recipient string `env:"FRIEND_PHONE_NUMBER,required"`

	// AttendeeMatch is the case-insensitive fragment that identifies the
	// user's own attendee entry inside the feed (e.g. part of the account
	// email).
	AttendeeMatch string `env:"ATTENDEE_MATCH" envDefault:"sreeprasad"`

	// WindowDays is the forward horizon for upcoming events.
	WindowDays int `env:"WINDOW_DAYS" envDefault:"30"`

	// StateFile is where the sent-event set is persisted between runs.
	StateFile string `env:"STATE_FILE" envDefault:"sent_events.json"`

	// LogFile, if set, receives a copy of every log line.
	LogFile string `env:"LOG_FILE" envDefault:""`

	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	SendTimeout  time.Duration `env:"SEND_TIMEOUT" envDefault:"30s"`
}

// Load reads configuration from the process environment, optionally
// pre-populated from a key=value file at envFile (ignored when absent).
// Variables already present in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	// env's `required` rejects unset variables but not empty ones, and an
	// empty value is just as unusable here.
	if c.CalendarURL == "" {
		return errors.New("GOOGLE_CALENDAR_ICS_URL is empty")
	}
	if c.Recipient == "" {
		return errors.New("FRIEND_PHONE_NUMBER is empty")
	}
	// The defaults guarantee positive values when unset; a non-positive
	// value can only come from an explicit misconfiguration, so refuse it
	// rather than second-guess what was meant.
	if c.WindowDays <= 0 {
		return fmt.Errorf("WINDOW_DAYS must be positive, got %d", c.WindowDays)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("SEND_TIMEOUT must be positive, got %s", c.SendTimeout)
	}
	return nil
}

// Window returns the forward horizon as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}
