// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package remote

import (
	"fmt"
	"os"
	"regexp"
)

var instanceIdFormat = regexp.MustCompile(`^i-[0-9a-f]{8,17}$`)

// ValidInstanceId reports whether id looks like an EC2 instance id.
// Malformed input fails fast, before any AWS call.
func ValidInstanceId(id string) bool {
	return instanceIdFormat.MatchString(id)
}

// FetchLogs dispatches a read-only diagnostic and prints the captured
// stdout. With logPath set, only that file is printed. No retry - this
// path is diagnostic, not state-changing.
func (e *Executor) FetchLogs(instanceId, app, logPath string) error {
	if !ValidInstanceId(instanceId) {
		return fmt.Errorf("`%s` does not look like an EC2 instance id", instanceId)
	}
	var script string
	var err error
	if logPath != "" {
		script, err = CatScript(logPath)
	} else {
		script, err = DiagnosticScript(app)
	}
	if err != nil {
		return err
	}
	invocation, err := e.RunOnce(instanceId, script, fmt.Sprintf("shipctl logs %s", app))
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, invocation.Stdout)
	return nil
}
