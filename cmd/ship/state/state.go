// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/stackship/shipctl/cmd/ship/config"
)

// DeployState is written after a successful infra run and read by every
// subsequent app deploy. It is replaced wholesale, never mutated in place.
type DeployState struct {
	Kind       string            `json:"kind,omitempty"`
	StackName  string            `json:"stackName,omitempty"`
	InstanceId string            `json:"instanceId,omitempty"`
	Outputs    map[string]string `json:"outputs,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt,omitempty"`
}

// Read returns nil without error if the state file does not exist.
func Read(filename string) (*DeployState, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("Unable to read state file `%s`: %v", filename, err)
	}
	var st DeployState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("Unable to parse state file `%s`: %v", filename, err)
	}
	if config.Debug {
		log.Printf("Loaded state from `%s`", filename)
	}
	return &st, nil
}

func Write(filename string, st *DeployState) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("Unable to marshal state: %v", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("Unable to write state file `%s`: %v", filename, err)
	}
	if config.Verbose {
		log.Printf("Wrote state `%s`", filename)
	}
	return EnsureIgnored(filepath.Join(filepath.Dir(filename), ".gitignore"), filepath.Base(filename))
}

// EnsureIgnored appends entry to the ignore file unless already present.
// Repeated runs must not duplicate the entry.
func EnsureIgnored(ignoreFile, entry string) error {
	data, err := os.ReadFile(ignoreFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Unable to read `%s`: %v", ignoreFile, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == entry {
			return nil
		}
	}
	out, err := os.OpenFile(ignoreFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("Unable to open `%s` for append: %v", ignoreFile, err)
	}
	defer out.Close()
	prefix := ""
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		prefix = "\n"
	}
	if _, err := out.WriteString(prefix + entry + "\n"); err != nil {
		return fmt.Errorf("Unable to append to `%s`: %v", ignoreFile, err)
	}
	return nil
}
