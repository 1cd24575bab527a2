package config

import (
	"os"

	"github.com/go-errors/errors"
	"gopkg.in/yaml.v2"
)

// Config carries the recognized runtime options. Absent keys keep the
// defaults so a partial config file is always valid.
type Config struct {
	// Consult the digest cache when hashing files. When false every
	// hash query computes fresh digests and never touches the cache.
	EnableHashCache bool `yaml:"enable_hash_cache"`

	// Upper bound on retained digest cache entries.
	HashCacheMax int `yaml:"hash_cache_max,omitempty"`
}

func GetDefaultConfig() *Config {
	return &Config{
		EnableHashCache: true,
		HashCacheMax:    500,
	}
}

func LoadConfig(filename string) (*Config, error) {
	result := GetDefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	err = yaml.UnmarshalStrict(data, result)
	if err != nil {
		return nil, errors.WrapPrefix(err, filename, 0)
	}

	if result.HashCacheMax <= 0 {
		result.HashCacheMax = GetDefaultConfig().HashCacheMax
	}

	return result, nil
}
