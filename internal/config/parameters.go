// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

// Runtime modes.
const (
	ModeLambdaHTTP  = "lambda-http"
	ModeLambdaEvent = "lambda-event"
	ModeService     = "service"
)

// Lambda payload types.
const (
	PayloadAPIGatewayV1 = "api-gateway-v1"
	PayloadAPIGatewayV2 = "api-gateway-v2"
	PayloadLambdaURL    = "lambda-url"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Relay is a struct that contains the configuration for the webhook relay.
	Relay relay
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"lambda-http"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type relay struct {
	// WebhookURL is the target URL when Source is "env".
	WebhookURL string `yaml:"webhookURL,omitempty"`
	// Source selects where the target URL is resolved from: "env" or "ssm".
	Source string `yaml:"source,omitempty" default:"env"`
	// SSMKey is the SSM parameter holding the target URL when Source is "ssm".
	SSMKey string `yaml:"ssmKey,omitempty"`
	// Timeout bounds the outbound webhook call.
	Timeout time.Duration `yaml:"timeout,omitempty" default:"10s"`
}

type service struct {
	Path        string        `yaml:"path,omitempty" default:"/"`
	Addr        string        `yaml:"addr,omitempty"`
	Port        string        `yaml:"port,omitempty" default:"8080"`
	Timeout     time.Duration `yaml:"timeout,omitempty" default:"15s"`
	MetricsPath string        `yaml:"metricsPath,omitempty" default:"/metrics"`
	HealthPath  string        `yaml:"healthPath,omitempty" default:"/healthz"`
	// MaxBodyBytes caps inbound request bodies.
	MaxBodyBytes int64 `yaml:"maxBodyBytes,omitempty" default:"1048576"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Relay),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// Reset clears every configuration section.
func Reset() {
	Global = global{}
	Relay = relay{}
	Service = service{}
	Lambda = lambda{}
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global  global  `yaml:"global,omitempty"`
		Relay   relay   `yaml:"relay,omitempty"`
		Service service `yaml:"service,omitempty"`
		Lambda  lambda  `yaml:"lambda,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Relay = a.Relay
	Service = a.Service
	Lambda = a.Lambda

	return nil
}
