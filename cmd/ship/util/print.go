// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package util

import (
	"log"
)

func PrintMap(m map[string]string) {
	for _, k := range SortedKeys(m) {
		log.Printf("\t%s => `%s`", k, m[k])
	}
}
