// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package config

import (
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

var (
	ConfigFile string

	StateFile    string
	ManifestFile string

	AwsProfile                  string
	AwsRegion                   string
	AwsPreferProfileCredentials bool
	AwsUseIamRoleCredentials    bool
	SkipAssumeRole              bool

	Verbose bool
	Debug   bool
	Trace   bool

	LogDestination string
	TtyMode        string
	Tty            bool
	TtyForced      bool

	AggWarnings bool
	Force       bool
)

func Update() {
	if LogDestination == "stdout" {
		log.SetOutput(os.Stdout)
	} else if LogDestination != "stderr" {
		log.Fatalf("Unknown --log-destination `%s`", LogDestination)
	}

	if Trace {
		Debug = true
	}
	if Debug {
		Verbose = true
	}
	if Force {
		log.Print("Force flag set, some errors will be treated as warnings")
	}

	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsTerminal(os.Stderr.Fd())
	switch TtyMode {
	case "true":
		Tty = true
		TtyForced = !tty
	case "false":
		Tty = false
	case "autodetect":
		Tty = tty
	default:
		log.Fatalf("Unknown --tty `%s`", TtyMode)
	}
}
