// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"log"

	"github.com/stackship/shipctl/cmd/ship/cmd"
)

func main() {
	log.SetFlags(log.LstdFlags)
	cmd.Execute()
}
