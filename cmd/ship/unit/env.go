// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package unit

import (
	"fmt"
	"os"
	"strings"

	"github.com/stackship/shipctl/cmd/ship/util"
)

// ParseEnvFile reads an optional `name=value` override file placed beside
// the build output. Returns nil without error if the file does not exist.
// The same pairs drive the systemd EnvironmentFile on EC2 and the task
// definition environment on ECS.
func ParseEnvFile(filename string) (map[string]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("Unable to read env file `%s`: %v", filename, err)
	}
	env := make(map[string]string)
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, fmt.Errorf("`%s` line %d: `%s` is not a name=value pair", filename, i+1, line)
		}
		env[kv[0]] = kv[1]
	}
	return env, nil
}

// RenderEnvFile produces deterministic `name=value` lines, sorted by name.
func RenderEnvFile(env map[string]string) string {
	var buf strings.Builder
	for _, k := range util.SortedKeys(env) {
		buf.WriteString(k)
		buf.WriteString("=")
		buf.WriteString(env[k])
		buf.WriteString("\n")
	}
	return buf.String()
}
