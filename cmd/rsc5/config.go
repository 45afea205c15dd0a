// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/rsc5

package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/rsc5"
)

// Config represents the rsc5 configuration file (~/.config/rsc5/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Writing defaults
	Policy     string  `yaml:"policy"`
	Format     string  `yaml:"format"`
	PathPrefix *string `yaml:"path_prefix"`
	MaxMipMaps *int    `yaml:"max_mipmaps"`

	// Reading
	MaxImageSize *uint64 `yaml:"max_image_size"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rsc5", "config.yaml")
}

// LoadConfig reads the config file at path. Returns a zero Config if the
// file doesn't exist or does not parse.
func LoadConfig(path string) Config {
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyLogConfig applies config file defaults to the logging flags when
// they were not set explicitly.
func applyLogConfig(c *cli.Command, cfg Config, level, format *string) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		*level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		*format = cfg.LogFormat
	}
}

// applyWriteConfig applies config file defaults to the insert flags.
func applyWriteConfig(c *cli.Command, cfg Config, policy, format, prefix *string, maxMipMaps *int) {
	if cfg.Policy != "" && !c.IsSet("policy") {
		*policy = cfg.Policy
	}
	if cfg.Format != "" && !c.IsSet("format") {
		*format = cfg.Format
	}
	if cfg.PathPrefix != nil && !c.IsSet("path-prefix") {
		*prefix = *cfg.PathPrefix
	}
	if cfg.MaxMipMaps != nil && !c.IsSet("max-mipmaps") {
		*maxMipMaps = *cfg.MaxMipMaps
	}
}

// readOptions returns the library read options the config asks for.
func (cfg Config) readOptions() *rsc5.ReadOptions {
	opts := &rsc5.ReadOptions{}
	if cfg.MaxImageSize != nil {
		opts.MaxImageSize = *cfg.MaxImageSize
	}
	return opts
}
