// Package config holds the tunables for an LLAP engine and loads them
// from YAML, in the style of the reference pack's test-harness loaders
// (a custom error type wrapping file path + cause, gopkg.in/yaml.v3).
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from a YAML string like
// "100ms" via time.ParseDuration. yaml.v3 has no built-in support for
// time.Duration (it only special-cases time.Time), so this wrapper
// carries the parsing logic the stdlib and yaml.v3 both lack.
type Duration time.Duration

// UnmarshalYAML parses a scalar duration string, e.g. "100ms" or "2s".
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("config: duration must be a string like \"100ms\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration the way time.Duration.String does.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds the serial connection settings and protocol timing
// tunables (max retries, retry interval, the retry buffer's dedup
// window, and the writer/retry-handler shutdown grace period),
// externalised so a host process can tune duty-cycle behaviour per
// deployment without recompiling.
type Config struct {
	Serial SerialConfig `yaml:"serial"`

	// MaxRetries is the retry cap before a pending Message is moved to
	// the unanswered list. Default 5.
	MaxRetries int `yaml:"max_retries"`

	// RetryInterval is how long a pending Message waits before being
	// retransmitted. Default 100ms.
	RetryInterval Duration `yaml:"retry_interval"`

	// RetryLoopInterval is the retry handler's scan granularity.
	// Default 10ms.
	RetryLoopInterval Duration `yaml:"retry_loop_interval"`

	// DedupWindow is how long an inbound Message is kept in the retry
	// buffer for duplicate-retransmission detection. Default 500ms.
	DedupWindow Duration `yaml:"dedup_window"`

	// ShutdownGrace bounds how long Stop waits for the writer and retry
	// handler to drain. Default 2s.
	ShutdownGrace Duration `yaml:"shutdown_grace"`

	// CommandBufferSize and EventBufferSize size the host-facing channels.
	CommandBufferSize int `yaml:"command_buffer_size"`
	EventBufferSize   int `yaml:"event_buffer_size"`
}

// SerialConfig mirrors serial.Config for YAML loading; the engine package
// converts it via Coordinator.StartDevice.
type SerialConfig struct {
	Device      string   `yaml:"device"`
	Baud        int      `yaml:"baud"`
	ReadTimeout Duration `yaml:"read_timeout"`
}

// Default returns the stock tunables, for a host that does not need to
// externalise them.
func Default(device string) Config {
	return Config{
		Serial: SerialConfig{
			Device: device,
			Baud:   9600,
		},
		MaxRetries:        5,
		RetryInterval:     Duration(100 * time.Millisecond),
		RetryLoopInterval: Duration(10 * time.Millisecond),
		DedupWindow:       Duration(500 * time.Millisecond),
		ShutdownGrace:     Duration(2 * time.Second),
		CommandBufferSize: 16,
		EventBufferSize:   64,
	}
}

// LoadError wraps a configuration load failure with the file it came
// from, matching the shape of the pack's YAML loaders.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("config: %s: %s: %v", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("config: %s: %v", e.Message, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Load reads and parses a Config from a YAML file, filling any field the
// file omits from Default(device).
func Load(path, device string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	cfg := Default(device)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &LoadError{File: path, Message: "failed to parse YAML", Cause: err}
	}

	return cfg, nil
}
