package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// DBConfig holds the tunable parameters shared by the disk manager, buffer
// manager, and heap-file layer.
type DBConfig struct {
	DBPath        string `mapstructure:"dbpath"`
	PageSize      int    `mapstructure:"pagesize"`
	BMBufferCount int    `mapstructure:"bm_buffercount"`
	BMPolicy      string `mapstructure:"bm_policy"`
}

// NewDBConfig constructs an instance from an on-disk path with default params.
func NewDBConfig(dbpath string) *DBConfig {
	return &DBConfig{DBPath: dbpath, PageSize: 4096, BMBufferCount: 16, BMPolicy: "LRU"}
}

// NewDBConfigWithParams constructs a DBConfig with an explicit page size.
func NewDBConfigWithParams(dbpath string, pageSize int, bmBufferCount int) *DBConfig {
	return &DBConfig{DBPath: dbpath, PageSize: pageSize, BMBufferCount: bmBufferCount, BMPolicy: "LRU"}
}

func (c *DBConfig) applyDefaults() {
	if c.PageSize == 0 {
		c.PageSize = 4096
	}
	if c.BMBufferCount == 0 {
		c.BMBufferCount = 16
	}
	if c.BMPolicy == "" {
		c.BMPolicy = "LRU"
	}
}

// LoadDBConfig loads configuration from a file using Viper, which infers the
// format (YAML, JSON, TOML, ...) from the file extension. Missing optional
// keys fall back to the same defaults as NewDBConfig.
func LoadDBConfig(filePath string) (*DBConfig, error) {
	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetEnvPrefix("HEAPFILEDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", filePath)
	}

	var c DBConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if c.DBPath == "" {
		return nil, errors.Errorf("dbpath not set in %s", filePath)
	}
	c.applyDefaults()
	return &c, nil
}
