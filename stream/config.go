package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/matt-g-everett/ledcount/anim"
	"gopkg.in/yaml.v2"
)

// ErrNoCounters is returned when a config defines no counters.
var ErrNoCounters = errors.New("no counters configured")

// CounterConfig describes one count-up counter.
type CounterConfig struct {
	Name     string   `yaml:"name"`
	From     int      `yaml:"from"`
	To       *int     `yaml:"to"`
	Duration *float64 `yaml:"duration"`
	Prefix   string   `yaml:"prefix"`
	Suffix   string   `yaml:"suffix"`
}

// Options converts the config into counter options.
func (c CounterConfig) Options() []anim.Option {
	duration := anim.DefaultDuration
	if c.Duration != nil {
		duration = *c.Duration
	}

	return []anim.Option{
		anim.WithName(c.Name),
		anim.WithFrom(c.From),
		anim.WithDuration(duration),
		anim.WithPrefix(c.Prefix),
		anim.WithSuffix(c.Suffix),
	}
}

type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		QoS      byte   `yaml:"qos"`
		Topics   struct {
			Stream  string `yaml:"stream"`
			Text    string `yaml:"text"`
			Control string `yaml:"control"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	FrameRate float64         `yaml:"frameRate"`
	Counters  []CounterConfig `yaml:"counters"`
}

// Redacted returns a copy of the config safe to log.
func (c Config) Redacted() Config {
	if c.Mqtt.Password != "" {
		c.Mqtt.Password = "****"
	}
	return c
}

// ReadConfig decodes a YAML config and validates it.
func ReadConfig(r io.Reader) (Config, error) {
	var config Config
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Validate fills defaults and rejects unusable counter definitions.
func (c *Config) Validate() error {
	if c.FrameRate <= 0 {
		c.FrameRate = anim.DefaultFrameRate
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3000"
	}
	if c.Mqtt.Topics.Stream == "" {
		c.Mqtt.Topics.Stream = "home/xmastree/stream"
	}
	if c.Mqtt.QoS > 2 {
		return fmt.Errorf("mqtt qos %d out of range", c.Mqtt.QoS)
	}

	if len(c.Counters) == 0 {
		return ErrNoCounters
	}

	seen := make(map[string]bool)
	for i, counter := range c.Counters {
		if counter.Name == "" {
			return fmt.Errorf("counter %d: missing name", i)
		}
		if seen[counter.Name] {
			return fmt.Errorf("counter %q: %w", counter.Name, anim.ErrDuplicateCounter)
		}
		if counter.To == nil {
			return fmt.Errorf("counter %q: missing to", counter.Name)
		}
		seen[counter.Name] = true
	}

	return nil
}
