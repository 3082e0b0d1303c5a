// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package params

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/stackship/shipctl/cmd/ship/config"
	"github.com/stackship/shipctl/cmd/ship/manifest"
	"github.com/stackship/shipctl/cmd/ship/state"
	"github.com/stackship/shipctl/cmd/ship/util"
)

var minRuntimeVersion = goversion.Must(goversion.NewVersion("6.0"))

// Resolve layers defaults < manifest < persisted state < explicit flags,
// explicit winning for every field independently. All missing required
// fields are collected and reported jointly, before any AWS call.
func Resolve(target Target, explicit map[string]string, m *manifest.Manifest, st *state.DeployState) (*Parameters, error) {
	required, exist := requiredByTarget[target]
	if !exist {
		return nil, fmt.Errorf("Unknown deployment target `%s`; must be one of: ec2, ecs", target)
	}

	values := make(map[string]string)
	for k, v := range defaults {
		values[k] = v
	}
	if m != nil {
		if m.App != "" {
			values[KeyApp] = m.App
		}
		for k, v := range m.Parameters {
			values[k] = v
		}
	}
	for k, v := range stateValues(st) {
		values[k] = v
	}
	for k, v := range explicit {
		if v != "" {
			values[k] = v
		}
	}

	var missing []string
	for _, key := range required {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if target == TargetECS && st == nil {
		// execution/task role ARNs come from the bootstrap stack outputs
		if values[KeyExecutionRoleArn] == "" || values[KeyTaskRoleArn] == "" {
			return nil, fmt.Errorf("No bootstrap stack state found; run `shipctl provision --target ecs` first")
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("Missing required %s: %s",
			util.Plural(len(missing), "parameter"), strings.Join(missing, ", "))
	}

	if errs := validateValues(target, values); len(errs) > 0 {
		return nil, fmt.Errorf("Invalid %s:\n\t%s",
			util.Plural(len(errs), "parameter"), util.Errors("\n\t", errs...))
	}

	if config.Debug {
		log.Print("Resolved parameters:")
		printable := make(map[string]string)
		for _, key := range required {
			printable[key] = values[key]
		}
		util.PrintMap(printable)
	}

	return &Parameters{Target: target, Values: values}, nil
}

func stateValues(st *state.DeployState) map[string]string {
	if st == nil {
		return nil
	}
	values := make(map[string]string)
	if st.InstanceId != "" {
		values[KeyEc2InstanceId] = st.InstanceId
	}
	if st.StackName != "" {
		values[KeyStackName] = st.StackName
	}
	for k, v := range st.Outputs {
		if v != "" {
			values[k] = v
		}
	}
	return values
}

func validateValues(target Target, values map[string]string) []error {
	var errs []error

	if v := values[KeyRuntimeVersion]; v != "" {
		parsed, err := goversion.NewVersion(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("RuntimeVersion `%s` is not a valid version: %v", v, err))
		} else if parsed.LessThan(minRuntimeVersion) {
			util.MaybeFatalf("RuntimeVersion `%s` is below the supported minimum %s; repeat with --force to proceed",
				v, minRuntimeVersion)
		}
	}

	if target == TargetECS {
		for _, key := range []string{KeyCpu, KeyMemory, KeyPort, KeyTaskCount} {
			if v := values[key]; v != "" {
				if _, err := strconv.ParseUint(v, 10, 32); err != nil {
					errs = append(errs, fmt.Errorf("%s `%s` is not a positive integer", key, v))
				}
			}
		}
	}

	return errs
}
