// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package util

import (
	"fmt"
	"log"
	"time"

	"github.com/stackship/shipctl/cmd/ship/config"
)

// Retry runs op up to attempts times with 2^attempt seconds in between.
// An error for which permanent returns true aborts without further
// attempts. sleep may be nil.
func Retry(what string, attempts int, sleep func(time.Duration), permanent func(error) bool, op func() error) error {
	if sleep == nil {
		sleep = time.Sleep
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if permanent != nil && permanent(err) {
			return fmt.Errorf("%s failed: %v", what, err)
		}
		if attempt < attempts {
			delay := time.Duration(1<<uint(attempt)) * time.Second
			if config.Verbose {
				log.Printf("%s failed (attempt %d of %d), retrying in %v: %v",
					what, attempt, attempts, delay, err)
			}
			sleep(delay)
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %v", what, attempts, err)
}
