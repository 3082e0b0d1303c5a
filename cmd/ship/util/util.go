// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-isatty"

	"github.com/stackship/shipctl/cmd/ship/config"
)

var (
	warnings        = make([]string, 0)
	warningsEmitted = make(map[string]struct{})
	HighlightColor  = maybeHighlight(aurora.BrightCyan)
	WarnColor       = maybeHighlight(aurora.BrightMagenta)
	logTerminal     *bool
)

func maybeHighlight(color func(interface{}) aurora.Value) func(string) string {
	return func(str string) string {
		if config.Tty && (IsLogTerminal() || config.TtyForced) {
			str = color(str).String()
		}
		return str
	}
}

func IsLogTerminal() bool {
	if logTerminal != nil {
		return *logTerminal
	}
	fd := os.Stderr.Fd()
	if config.LogDestination == "stdout" {
		fd = os.Stdout.Fd()
	}
	tty := isatty.IsTerminal(fd)
	logTerminal = &tty
	return tty
}

func Warn(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	log.Printf(WarnColor("WARN: %s"), msg)
	if config.AggWarnings {
		warnings = append(warnings, msg)
	}
}

func WarnOnce(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if _, emitted := warningsEmitted[msg]; emitted {
		return
	}
	warningsEmitted[msg] = struct{}{}
	log.Printf(WarnColor("WARN: %s"), msg)
	if config.AggWarnings {
		warnings = append(warnings, msg)
	}
}

func PrintAllWarnings() {
	if !config.AggWarnings || len(warnings) == 0 {
		return
	}
	if config.Verbose {
		log.Print(WarnColor("All warnings combined:"))
	}
	uniq := make([]string, 0, len(warnings))
	seen := make(map[string]struct{})
	for _, msg := range warnings {
		if _, emitted := seen[msg]; emitted {
			continue
		}
		seen[msg] = struct{}{}
		uniq = append(uniq, msg)
	}
	io.WriteString(os.Stderr, strings.Join(uniq, "\n"))
	io.WriteString(os.Stderr, "\n")
}

func Errors(sep string, maybeErrors ...error) string {
	if sep == "" {
		sep = ", "
	}
	errs := make([]string, 0, len(maybeErrors))
	for _, err := range maybeErrors {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) == 0 {
		return "(no errors)"
	}
	return strings.Join(UniqInOrder(errs), sep)
}

func AskConfirmation(prompt string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		if config.Verbose {
			log.Printf("Stdin is not a terminal, not asking `%s`", prompt)
		}
		return false
	}
	fmt.Printf("%s [y/N]: ", prompt)
	var input string
	read, err := fmt.Scanln(&input)
	if read > 0 && err != nil {
		log.Fatalf("Error reading input for `%s`: %v (read %d bytes)", prompt, err, read)
	}
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}

func Coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func UniqInOrder(source []string) []string {
	result := make([]string, 0, len(source))
	seen := make(map[string]struct{})
	for _, str := range source {
		if _, exist := seen[str]; !exist {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}

func Contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func SortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return []string{}
	}
	keys := make([]string, 0, len(m))
	for name := range m {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

func ParseKvList(list string) (map[string]string, error) {
	parsed := make(map[string]string)
	if list == "" {
		return parsed, nil
	}
	vars := strings.Split(list, ",")
	for _, v := range vars {
		kv := strings.SplitN(v, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("`%s` cannot be split into key/value pair", v)
		}
		parsed[kv[0]] = kv[1]
	}
	if config.Debug {
		log.Print("Parsed:")
		for k, v := range parsed {
			log.Printf("\t%s => %s", k, v)
		}
	}
	return parsed, nil
}

func Plural(size int, noun ...string) string {
	l := len(noun)
	if l == 0 {
		return ""
	}
	if size > 1 {
		if l > 1 {
			return noun[1]
		}
		return fmt.Sprintf("%ss", noun[0])
	}
	return noun[0]
}

func MustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		log.Fatalf("Unable to convert `%s` to absolute pathname: %v", path, err)
	}
	return abs
}

func Wrap(str string) string {
	str = strings.Replace(str, "\n", "\\n", -1)
	if len(str) > 102 {
		str = str[:100] + "..."
	}
	return str
}
