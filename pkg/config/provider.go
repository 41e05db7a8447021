package config

import (
	"fmt"
)

// Reporter names accepted in the reporter section
const (
	ReporterStdout = "stdout"
	ReporterLog    = "log"
	ReporterNone   = "none"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	LoadConfig() (*ConfigData, error)
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server   ServerData `json:"server" yaml:"server"`
	Log      LogData    `json:"log" yaml:"log"`
	Reporter string     `json:"reporter,omitempty" yaml:"reporter,omitempty"`
}

// ServerData holds the configuration for the REST server
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	HTTPPort   int    `json:"http_port,omitempty" yaml:"http_port,omitempty"`
	Cert       string `json:"cert,omitempty" yaml:"cert,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`

	// Metrics enables the /metrics endpoint. Nil means enabled.
	Metrics *bool `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// LogData holds logging options
type LogData struct {
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// MetricsEnabled reports whether /metrics should be served
func (s ServerData) MetricsEnabled() bool {
	return s.Metrics == nil || *s.Metrics
}

// Addr returns the host:port the server listens on
func (s ServerData) Addr() string {
	return fmt.Sprintf("%v:%v", s.ListenAddr, s.HTTPPort)
}

// ApplyDefaults fills in unset fields
func (c *ConfigData) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "0.0.0.0"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Reporter == "" {
		c.Reporter = ReporterLog
	}
}

// Validate checks the configuration for values the server cannot run with
func (c *ConfigData) Validate() error {
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range", c.Server.HTTPPort)
	}
	if (c.Server.Cert == "") != (c.Server.Key == "") {
		return fmt.Errorf("server.cert and server.key must be set together")
	}

	switch c.Reporter {
	case ReporterStdout, ReporterLog, ReporterNone:
	default:
		return fmt.Errorf("unsupported reporter %q: use %q, %q or %q", c.Reporter, ReporterStdout, ReporterLog, ReporterNone)
	}
	return nil
}

// Default returns a configuration with defaults applied
func Default() *ConfigData {
	c := &ConfigData{}
	c.ApplyDefaults()
	return c
}
