// SPDX-License-Identifier: GPL-3.0-or-later

// Package config decodes the agent's startup configuration: the listen
// address and the taps/policies to stand up before serving traffic.
// [Load] decodes YAML from any reader into a [Config]; [LoadFile] opens a
// file from disk and decodes it the same way.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/netvisor/agent/internal/pipeline"
)

// HandlerBinding names one handler to attach to an existing tap.
type HandlerBinding struct {
	Kind    pipeline.Kind `yaml:"kind"`
	Tap     string        `yaml:"tap"`
	Handler string        `yaml:"handler,omitempty"`
}

// Policy is one named policy and the handlers it attaches at startup.
type Policy struct {
	Name     string           `yaml:"name"`
	Handlers []HandlerBinding `yaml:"handlers"`
}

// Tap is one named tap and the handler kind of events it carries.
type Tap struct {
	Name string        `yaml:"name"`
	Kind pipeline.Kind `yaml:"kind"`
}

// Config is the agent's full startup configuration.
type Config struct {
	ListenAddr string   `yaml:"listen_addr"`
	Instance   string   `yaml:"instance,omitempty"`
	Taps       []Tap    `yaml:"taps"`
	Policies   []Policy `yaml:"policies"`
}

// DefaultListenAddr is used when a config omits listen_addr.
const DefaultListenAddr = ":10853"

// Load decodes a YAML config from r, filling defaults for any field a
// config file leaves blank.
func Load(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	for _, t := range c.Taps {
		if t.Name == "" {
			return nil, fmt.Errorf("config: tap missing name")
		}
		if !pipeline.Valid(t.Kind) {
			return nil, fmt.Errorf("config: tap %q has unknown kind %q", t.Name, t.Kind)
		}
	}
	for _, p := range c.Policies {
		if p.Name == "" {
			return nil, fmt.Errorf("config: policy missing name")
		}
		for _, b := range p.Handlers {
			if !pipeline.Valid(b.Kind) || b.Tap == "" {
				return nil, fmt.Errorf("config: policy %q has a handler binding missing a valid kind or tap", p.Name)
			}
		}
	}
	return &c, nil
}

// LoadFile opens path and decodes it via [Load].
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
