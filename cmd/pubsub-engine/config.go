// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-pubsub-engine/pkg/errors"
)

// Config is the daemon configuration file shape.
type Config struct {
	NATS struct {
		URL           string        `yaml:"url"`
		Credential    string        `yaml:"credential"`
		Timeout       time.Duration `yaml:"timeout"`
		MaxReconnect  int           `yaml:"max_reconnect"`
		ReconnectWait time.Duration `yaml:"reconnect_wait"`
		BucketPrefix  string        `yaml:"bucket_prefix"`
	} `yaml:"nats"`

	Engine struct {
		Namespace  string        `yaml:"namespace"`
		GCInterval time.Duration `yaml:"gc_interval"`
	} `yaml:"engine"`

	Host struct {
		Timeout        time.Duration `yaml:"timeout"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"host"`
}

func defaultConfig() Config {
	var config Config
	config.NATS.URL = "nats://localhost:4222"
	config.NATS.Timeout = 10 * time.Second
	config.NATS.MaxReconnect = -1
	config.NATS.ReconnectWait = 2 * time.Second
	config.NATS.BucketPrefix = constants.ServiceName
	config.Engine.GCInterval = constants.DefaultGCInterval
	config.Host.Timeout = 45 * time.Second
	config.Host.RequestTimeout = 2 * time.Second
	return config
}

// LoadConfig reads the YAML config at path, falling back to defaults when
// the file does not exist. NATS_URL overrides the configured cluster URL.
func LoadConfig(path string) (Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return config, errors.NewUnexpected("failed to read config file", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, errors.NewValidation("config file is not valid YAML", err)
		}
	}

	if url := os.Getenv("NATS_URL"); url != "" {
		config.NATS.URL = url
	}
	return config, nil
}
