package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Landmark is a pre-geocoded searchable location. Geocoding happens
// offline; search only resolves against this table.
type Landmark struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

var (
	instance *Config
	once     sync.Once
)

// Config - can/will add more later
type Config struct {
	API struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"api"`
	Playback struct {
		IntervalMs int            `yaml:"interval_ms"`
		Presets    map[string]int `yaml:"presets"`
	} `yaml:"playback"`
	History struct {
		DaysOptions []int `yaml:"days_options"`
		MaxDays     int   `yaml:"max_days"`
	} `yaml:"history"`
	Cache struct {
		SnapshotTTLSeconds int `yaml:"snapshot_ttl_seconds"`
	} `yaml:"cache"`
	Map struct {
		CenterLatitude      float64 `yaml:"center_latitude"`
		CenterLongitude     float64 `yaml:"center_longitude"`
		MaxSearchDistanceKm float64 `yaml:"max_search_distance_km"`
	} `yaml:"map"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Landmarks []Landmark `yaml:"landmarks"`
}

func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file %s: %w", configPath, readErr)
			return
		}

		if parseErr := yaml.Unmarshal(data, instance); parseErr != nil {
			err = fmt.Errorf("failed to parse config: %w", parseErr)
			return
		}

		instance.applyDefaults()

		if validateErr := instance.validate(); validateErr != nil {
			err = validateErr
			return
		}
	})

	return instance, err
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

func (c *Config) applyDefaults() {
	if c.Playback.IntervalMs == 0 {
		c.Playback.IntervalMs = 1500
	}
	if len(c.Playback.Presets) == 0 {
		c.Playback.Presets = map[string]int{
			"midnight": 0,
			"morning":  6,
			"noon":     12,
			"evening":  18,
			"night":    21,
		}
	}
	if len(c.History.DaysOptions) == 0 {
		c.History.DaysOptions = []int{7, 14, 30}
	}
	if c.History.MaxDays == 0 {
		c.History.MaxDays = 30
	}
	if c.Cache.SnapshotTTLSeconds == 0 {
		c.Cache.SnapshotTTLSeconds = 300
	}
	if c.Map.CenterLatitude == 0 && c.Map.CenterLongitude == 0 {
		// Mumbai city center
		c.Map.CenterLatitude = 19.0760
		c.Map.CenterLongitude = 72.8777
	}
	if c.Map.MaxSearchDistanceKm == 0 {
		c.Map.MaxSearchDistanceKm = 30
	}
}

func (c *Config) validate() error {
	if c.Playback.IntervalMs < 0 {
		return fmt.Errorf("playback.interval_ms cannot be negative")
	}
	for name, hour := range c.Playback.Presets {
		if hour < 0 || hour > 23 {
			return fmt.Errorf("playback preset %q has hour %d outside 0-23", name, hour)
		}
	}
	for _, d := range c.History.DaysOptions {
		if d <= 0 || d > c.History.MaxDays {
			return fmt.Errorf("history.days_options entry %d outside 1-%d", d, c.History.MaxDays)
		}
	}
	return nil
}
