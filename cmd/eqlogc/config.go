// Copyright (c) 2014, Kevin Walsh.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"gopkg.in/yaml.v2"
)

// Config is eqlogc's on-disk configuration (spec.md §5, SPEC_FULL.md §6.3).
// CLI flags, when set, override the corresponding field after loading.
type Config struct {
	SourceRoot string `yaml:"source_root"`
	OutputDir  string `yaml:"output_dir"`
	MaxRounds  int    `yaml:"max_rounds"`
}

// DefaultConfig returns eqlogc's defaults: compile the current directory in
// place, with no saturation budget.
func DefaultConfig() *Config {
	return &Config{
		SourceRoot: ".",
		OutputDir:  ".",
		MaxRounds:  0,
	}
}

// LoadConfig reads a YAML config file at path, starting from DefaultConfig
// for any field the file omits. A missing path is not an error: eqlogc is
// usable with flags alone.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
