// Package config resolves where flight data lives on the local system.
//
// Each flight's run directories are rooted at a directory named by an
// ANITA<flight>_ROOT_DATA environment variable, optionally overridden by
// an .anitareader.yaml config file (keys data.anita1 .. data.anita4) in
// the working directory or the user's home directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/viper"
)

// MinFlight and MaxFlight bound the known flight numbers.
const (
	MinFlight = 1
	MaxFlight = 4
)

// ErrInvalidFlight is returned for flight numbers outside [MinFlight, MaxFlight].
var ErrInvalidFlight = errors.New("invalid flight number")

// Config resolves per-flight data directories.
type Config struct {
	v *viper.Viper
}

// New creates a Config from the environment and any .anitareader.yaml
// found in the working directory or the user's home directory. A missing
// config file is not an error; the environment variables stand alone.
func New() *Config {
	v := viper.New()
	v.SetConfigName(".anitareader")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	for flight := MinFlight; flight <= MaxFlight; flight++ {
		// BindEnv with an explicit variable name never fails.
		_ = v.BindEnv(flightKey(flight), fmt.Sprintf("ANITA%d_ROOT_DATA", flight))
	}

	// Config file is optional.
	_ = v.ReadInConfig()

	return &Config{v: v}
}

// DataDirectory returns the root directory holding the given flight's run
// directories. It returns the empty string if no directory is configured.
func (c *Config) DataDirectory(flight int) (string, error) {
	if flight < MinFlight || flight > MaxFlight {
		return "", fmt.Errorf("%w: %d", ErrInvalidFlight, flight)
	}
	return c.v.GetString(flightKey(flight)), nil
}

// flightKey returns the config key for a flight's data directory.
func flightKey(flight int) string {
	return fmt.Sprintf("data.anita%d", flight)
}

var (
	defaultOnce sync.Once
	defaultCfg  *Config
)

// Default returns the process-wide Config, created on first use.
func Default() *Config {
	defaultOnce.Do(func() {
		defaultCfg = New()
	})
	return defaultCfg
}
