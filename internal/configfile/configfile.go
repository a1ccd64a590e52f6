// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package configfile loads component configuration files.
package configfile

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"

	"github.com/holomush/bricks/pkg/brick"
)

// Load parses the YAML file at path. An empty document yields an empty Config.
func Load(path string) (brick.Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, oops.With("path", path).Wrapf(err, "load config file")
	}

	cfg := brick.Config(k.Raw())
	if cfg == nil {
		cfg = brick.Config{}
	}
	return cfg, nil
}
