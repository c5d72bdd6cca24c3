package engine

import (
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/pkg/errors"
)

// DefaultProfile is the profile name used when none is requested.
const DefaultProfile = "default"

const (
	defaultScheme  = "http"
	defaultPort    = 8045
	defaultTimeout = 5 * time.Minute
)

// Config holds the connection settings for one engine profile.
type Config struct {
	Profile string
	Scheme  string
	Host    string
	Port    int
	Token   string
	Timeout time.Duration

	// EventsNamespace is the socket.io namespace the engine publishes
	// execution progress events on. Empty disables the monitor.
	EventsNamespace string
}

// Endpoint returns the base URL for the profile.
func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s://%s:%d", c.Scheme, c.Host, c.Port)
}

// DefaultConfig returns the built-in localhost profile used when no config
// file is given.
func DefaultConfig() *Config {
	return &Config{
		Profile: DefaultProfile,
		Scheme:  defaultScheme,
		Host:    "localhost",
		Port:    defaultPort,
		Timeout: defaultTimeout,
	}
}

// configRoot mirrors the top-level structure of a config file: one or more
// labelled engine blocks.
type configRoot struct {
	Engines []*configProfile `hcl:"engine,block"`
}

type configProfile struct {
	Name            string `hcl:"name,label"`
	Scheme          string `hcl:"scheme,optional"`
	Host            string `hcl:"host"`
	Port            int    `hcl:"port,optional"`
	Token           string `hcl:"token,optional"`
	Timeout         string `hcl:"timeout,optional"`
	EventsNamespace string `hcl:"events_namespace,optional"`
}

// LoadConfigFile reads the named profile from an HCL config file.
func LoadConfigFile(path, profile string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, errors.Wrapf(diags, "failed to parse config file %s", path)
	}
	return decodeConfig(file.Body, profile)
}

// LoadConfigString reads the named profile from an in-memory HCL document.
func LoadConfigString(src, profile string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(src), "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Wrap(diags, "failed to parse config")
	}
	return decodeConfig(file.Body, profile)
}

func decodeConfig(body hcl.Body, profile string) (*Config, error) {
	var root configRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, errors.Wrap(diags, "failed to decode config")
	}
	if profile == "" {
		profile = DefaultProfile
	}
	for _, p := range root.Engines {
		if p.Name != profile {
			continue
		}
		return newConfig(p)
	}
	return nil, errors.Errorf("config profile %q not found", profile)
}

func newConfig(p *configProfile) (*Config, error) {
	if p.Host == "" {
		return nil, errors.Errorf("profile %q: host is required", p.Name)
	}
	cfg := &Config{
		Profile:         p.Name,
		Scheme:          p.Scheme,
		Host:            p.Host,
		Port:            p.Port,
		Token:           p.Token,
		Timeout:         defaultTimeout,
		EventsNamespace: p.EventsNamespace,
	}
	if cfg.Scheme == "" {
		cfg.Scheme = defaultScheme
	}
	if cfg.Scheme != "http" && cfg.Scheme != "https" {
		return nil, errors.Errorf("profile %q: scheme must be http or https", p.Name)
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return nil, errors.Wrapf(err, "profile %q: invalid timeout", p.Name)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}
