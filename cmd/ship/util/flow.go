// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package util

import (
	"log"

	"github.com/stackship/shipctl/cmd/ship/config"
)

// MaybeFatalf exits unless --force downgrades the error to a warning.
func MaybeFatalf(format string, v ...interface{}) {
	if config.Force {
		Warn(format, v...)
	} else {
		log.Fatalf(format, v...)
	}
}
