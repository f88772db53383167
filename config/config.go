/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads data service settings from YAML, .env and the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/suparena/dataservice/datastore/ddb"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
	"gopkg.in/yaml.v3"
)

// Config holds the settings needed to open a DynamoDB backed session
type Config struct {
	Table       string `yaml:"table"`
	Region      string `yaml:"region"`
	AccessKey   string `yaml:"accessKey"`
	SecretKey   string `yaml:"secretKey"`
	Endpoint    string `yaml:"endpoint"`
	Consistency string `yaml:"consistency"`
	LogLevel    string `yaml:"logLevel"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Consistency: storagemodels.Strong.String(),
		LogLevel:    "info",
	}
}

// envOverrides lists environment variables in increasing precedence per field
var envOverrides = []struct {
	names []string
	field func(*Config) *string
}{
	{[]string{"AWS_DDB_TABLE", "DATASERVICE_TABLE"}, func(c *Config) *string { return &c.Table }},
	{[]string{"AWS_REGION", "DATASERVICE_REGION"}, func(c *Config) *string { return &c.Region }},
	{[]string{"AWS_ACCESS_KEY", "AWS_ACCESS_KEY_ID", "DATASERVICE_ACCESS_KEY"}, func(c *Config) *string { return &c.AccessKey }},
	{[]string{"AWS_SECRET_KEY", "AWS_SECRET_ACCESS_KEY", "DATASERVICE_SECRET_KEY"}, func(c *Config) *string { return &c.SecretKey }},
	{[]string{"DATASERVICE_ENDPOINT"}, func(c *Config) *string { return &c.Endpoint }},
	{[]string{"DATASERVICE_CONSISTENCY"}, func(c *Config) *string { return &c.Consistency }},
	{[]string{"DATASERVICE_LOG_LEVEL"}, func(c *Config) *string { return &c.LogLevel }},
}

// Load reads the YAML file at path when one is given, then loads a .env
// file from the working directory if present, then applies environment
// overrides. Variables already set in the environment win over .env.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// ApplyEnv overrides fields from the environment looked up with lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, o := range envOverrides {
		for _, name := range o.names {
			if v, ok := lookup(name); ok && v != "" {
				*o.field(c) = v
			}
		}
	}
}

// ParseConsistency maps "strong" or "eventual" to a consistency mode
func ParseConsistency(s string) (storagemodels.Consistency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strong":
		return storagemodels.Strong, nil
	case "eventual":
		return storagemodels.Eventual, nil
	}
	return 0, errors.NewValidationError("consistency", fmt.Sprintf("unknown consistency %q, want strong or eventual", s))
}

// Validate reports the first missing or malformed setting
func (c Config) Validate() error {
	if c.Table == "" {
		return errors.NewValidationError("table", "table name is required")
	}
	if c.Region == "" && c.Endpoint == "" {
		return errors.NewValidationError("region", "region is required unless an endpoint is set")
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return errors.NewValidationError("accessKey", "access key and secret key must be set together")
	}
	if _, err := ParseConsistency(c.Consistency); err != nil {
		return err
	}
	return nil
}

// SessionOptions converts the configuration into ddb.Options. The logger is
// left for the caller to set.
func (c Config) SessionOptions() (ddb.Options, error) {
	if err := c.Validate(); err != nil {
		return ddb.Options{}, err
	}
	consistency, _ := ParseConsistency(c.Consistency)
	return ddb.Options{
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Region:      c.Region,
		Endpoint:    c.Endpoint,
		Table:       c.Table,
		Consistency: consistency,
	}, nil
}
