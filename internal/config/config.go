// YAML config loader with CUE validation integration
package config

import (
	"bytes"
	"fmt"
	"os"

	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/VolaTeQ/litchitool/internal/litchiapi"
	"github.com/VolaTeQ/litchitool/internal/mission"
)

// PhotoInterval selects exactly one of Time (seconds) or Distance (meters).
type PhotoInterval struct {
	Time     float32 `yaml:"time,omitempty"`
	Distance float32 `yaml:"distance,omitempty"`
}

// Mission overrides fields of mission.DefaultConfig. Unset fields keep
// their defaults.
type Mission struct {
	HeadingMode   string         `yaml:"heading_mode"`
	FinishAction  string         `yaml:"finish_action"`
	PathMode      string         `yaml:"path_mode"`
	CruisingSpeed *float32       `yaml:"cruising_speed"`
	RCSpeed       *float32       `yaml:"rc_speed"`
	Repeat        *int32         `yaml:"repeat"`
	PhotoInterval *PhotoInterval `yaml:"photo_interval"`
}

// Account holds Litchi cloud credentials.
type Account struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// API points the client at a Parse server.
type API struct {
	BaseURL string `yaml:"base_url"`
	AppID   string `yaml:"app_id"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// History configures the conversion history log.
type History struct {
	File string `yaml:"file"`
}

// Tracing selects where spans go. An empty exporter disables tracing.
type Tracing struct {
	Exporter    string  `yaml:"exporter"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Config is the root configuration document.
type Config struct {
	Mission Mission `yaml:"mission"`
	Account Account `yaml:"account"`
	API     API     `yaml:"api"`
	Log     Log     `yaml:"log"`
	History History `yaml:"history"`
	Tracing Tracing `yaml:"tracing"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		API:     API{BaseURL: litchiapi.DefaultBaseURL, AppID: litchiapi.DefaultAppID},
		Log:     Log{Level: "info", Format: "text"},
		Tracing: Tracing{SampleRatio: 1},
	}
}

// Load reads a YAML config, validates it against a CUE schema and applies
// environment overrides. An empty configPath yields the defaults plus
// environment.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := decode(data, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = litchiapi.DefaultBaseURL
	}
	if cfg.API.AppID == "" {
		cfg.API.AppID = litchiapi.DefaultAppID
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LITCHI_USERNAME"); v != "" {
		c.Account.Username = v
	}
	if v := os.Getenv("LITCHI_PASSWORD"); v != "" {
		c.Account.Password = v
	}
	if v := os.Getenv("LITCHI_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("LITCHI_TRACING"); v != "" {
		c.Tracing.Exporter = v
		if v == "off" {
			c.Tracing.Exporter = ""
		}
	}
	if v := os.Getenv("LITCHI_OTLP_ENDPOINT"); v != "" {
		c.Tracing.Endpoint = v
	}
	if v := os.Getenv("LITCHI_TRACING_SAMPLE_RATIO"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r >= 0 && r <= 1 {
			c.Tracing.SampleRatio = r
		}
	}
}

// MissionConfig resolves the mission section against mission.DefaultConfig.
func (c *Config) MissionConfig() (mission.Config, error) {
	mc := mission.DefaultConfig()
	m := c.Mission

	var err error
	if m.HeadingMode != "" {
		if mc.HeadingMode, err = mission.ParseHeadingMode(m.HeadingMode); err != nil {
			return mc, err
		}
	}
	if m.FinishAction != "" {
		if mc.FinishAction, err = mission.ParseFinishAction(m.FinishAction); err != nil {
			return mc, err
		}
	}
	if m.PathMode != "" {
		if mc.PathMode, err = mission.ParsePathMode(m.PathMode); err != nil {
			return mc, err
		}
	}
	if m.CruisingSpeed != nil {
		mc.CruisingSpeed = *m.CruisingSpeed
	}
	if m.RCSpeed != nil {
		mc.RCSpeed = *m.RCSpeed
	}
	if m.Repeat != nil {
		mc.Repeat = *m.Repeat
	}
	if pi := m.PhotoInterval; pi != nil {
		switch {
		case pi.Time > 0 && pi.Distance > 0:
			return mc, fmt.Errorf("photo_interval: set either time or distance, not both")
		case pi.Time > 0:
			mc.PhotoInterval = mission.TimeInterval(pi.Time)
		case pi.Distance > 0:
			mc.PhotoInterval = mission.DistanceInterval(pi.Distance)
		}
	}
	return mc, nil
}

// HasCredentials reports whether both username and password are set.
func (c *Config) HasCredentials() bool {
	return c.Account.Username != "" && c.Account.Password != ""
}
