// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package manifest

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/stackship/shipctl/cmd/ship/config"
)

// Manifest is the optional ship.yaml placed in the workspace; its
// parameters layer between built-in defaults and persisted state.
type Manifest struct {
	Version    int               `yaml:"version,omitempty"`
	App        string            `yaml:"app,omitempty"`
	Target     string            `yaml:"target,omitempty"`
	Parameters map[string]string `yaml:"parameters,omitempty"`
}

// Parse returns nil without error if the manifest file does not exist.
func Parse(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("Unable to read `%s`: %v", filename, err)
	}
	validateManifest(filename, data)
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("Unable to parse `%s`: %v", filename, err)
	}
	if m.Version != 0 && m.Version != 1 {
		return nil, fmt.Errorf("`%s` version %d is not supported", filename, m.Version)
	}
	if config.Debug {
		log.Printf("Loaded manifest `%s` with %d parameters", filename, len(m.Parameters))
	}
	return &m, nil
}
