// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config reads the YAML file holding default settings for
// "coprof diff".
//
// A configuration file looks like:
//
//	metric: self
//	limit: 20
//	direction: vertical
//	reverse: false
//	format: text
//	db: sqlite3:profiles.db
//	chart:
//	  width: 30   # centimeters
//	  height: 0   # derived from the number of bars
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cerfacs/coprof/compare"
	"github.com/cerfacs/coprof/gprof"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of a comparison.
type Config struct {
	Metric    string `yaml:"metric"`
	Limit     int    `yaml:"limit"`
	Direction string `yaml:"direction"`
	Reverse   bool   `yaml:"reverse"`
	Format    string `yaml:"format"`
	DB        string `yaml:"db"`
	Chart     Chart  `yaml:"chart"`
}

// Chart is the size of rendered charts, in centimeters. Zero means
// automatic.
type Chart struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Formats lists the accepted values of Config.Format.
var Formats = []string{"text", "csv", "html", "json"}

// Default returns the settings used when there is no configuration
// file.
func Default() *Config {
	v := compare.DefaultView()
	return &Config{
		Metric:    v.Metric.String(),
		Limit:     v.Limit,
		Direction: v.Direction.String(),
		Format:    "text",
	}
}

// Load reads the configuration file at path. Settings missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a configuration from YAML and validates it.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports the first invalid setting of c.
func (c *Config) Validate() error {
	if _, err := c.View(); err != nil {
		return err
	}
	if !validFormat(c.Format) {
		return fmt.Errorf("unknown format %q (want one of %s)", c.Format, strings.Join(Formats, ", "))
	}
	if c.Chart.Width < 0 || c.Chart.Height < 0 {
		return fmt.Errorf("negative chart size %gx%g", c.Chart.Width, c.Chart.Height)
	}
	return nil
}

func validFormat(f string) bool {
	for _, ok := range Formats {
		if f == ok {
			return true
		}
	}
	return false
}

// View returns the comparison view described by c.
func (c *Config) View() (compare.View, error) {
	var v compare.View
	var err error
	if v.Metric, err = gprof.ParseCategory(c.Metric); err != nil {
		return v, err
	}
	if v.Direction, err = compare.ParseDirection(c.Direction); err != nil {
		return v, err
	}
	if c.Limit < 0 {
		return v, fmt.Errorf("negative limit %d", c.Limit)
	}
	v.Limit = c.Limit
	v.Reverse = c.Reverse
	return v, nil
}
