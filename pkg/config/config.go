/*
Package config manages TOML config for the decoder service.

InitConfig handles automatic config file creation and loading with fallback to defaults.
LoadConfig and SaveConfig provide direct fs for runtime changes.
Update allows targeted parameter changes with persistence.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Session   SessionConfig   `toml:"session"`
	Weighting WeightingConfig `toml:"weighting"`
	Dict      DictConfig      `toml:"dict"`
}

// ServerConfig has IPC server related options.
type ServerConfig struct {
	MaxResults   int  `toml:"max_results"`
	EnableFilter bool `toml:"enable_filter"`
}

// SessionConfig has NodePool / NodeCache sizing options.
type SessionConfig struct {
	LargeQueueCapacity           int   `toml:"large_queue_capacity"`
	SmallQueueCapacity           int   `toml:"small_queue_capacity"`
	DictionarySizeThresholdBytes int64 `toml:"dictionary_size_threshold_bytes"`
	BigramCacheMaxContexts       int   `toml:"bigram_cache_max_contexts"`
}

// WeightingConfig selects and tunes the active cost model.
type WeightingConfig struct {
	Mode                string  `toml:"mode"` // "typing" or "gesture"
	MostCommonKeyWidth  int     `toml:"most_common_key_width"`
	AllowCorrections    bool    `toml:"allow_corrections"`
	BoostExactMatches   bool    `toml:"boost_exact_matches"`
}

// DictConfig holds dictionary loading options.
type DictConfig struct {
	Path                    string `toml:"path"`
	RequiresGermanUmlauts   bool   `toml:"requires_german_umlauts"`
	RequiresFrenchLigatures bool   `toml:"requires_french_ligatures"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxResults:   18,
			EnableFilter: true,
		},
		Session: SessionConfig{
			LargeQueueCapacity:           310,
			SmallQueueCapacity:           100,
			DictionarySizeThresholdBytes: 256 * 1024,
			BigramCacheMaxContexts:       24,
		},
		Weighting: WeightingConfig{
			Mode:               "typing",
			MostCommonKeyWidth: 120,
			AllowCorrections:   true,
			BoostExactMatches:  true,
		},
		Dict: DictConfig{
			RequiresGermanUmlauts:   true,
			RequiresFrenchLigatures: true,
		},
	}
}

// InitConfig loads config from file or creates default if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			return nil, err
		}
		log.Debugf("Created default config file at: ( %s )", configPath)
		return config, nil
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config, using defaults: %v", err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file.
func LoadConfig(configPath string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		log.Errorf("Failed to decode config file: %v", err)
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves into a TOML file.
func SaveConfig(config *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		log.Errorf("Failed to create config file: %v", err)
		return err
	}
	defer file.Close()
	encoder := toml.NewEncoder(file)
	return encoder.Encode(config)
}

// Update changes the config values and saves to file.
func (c *Config) Update(configPath string, maxResults *int, allowCorrections *bool, mode *string) error {
	if maxResults != nil {
		c.Server.MaxResults = *maxResults
	}
	if allowCorrections != nil {
		c.Weighting.AllowCorrections = *allowCorrections
	}
	if mode != nil {
		c.Weighting.Mode = *mode
	}
	return SaveConfig(c, configPath)
}
