// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package remote

import (
	"bytes"
	"fmt"
	"regexp"
	gotemplate "text/template"

	"github.com/Masterminds/sprig"
)

var (
	safeName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	safePath = regexp.MustCompile(`^[A-Za-z0-9/][A-Za-z0-9/._-]*$`)
)

// DeployScript renders the idempotent install-and-restart script executed
// on the instance. Free-form payloads (unit text, env file) travel
// base64-encoded so no shell quoting can break out.
type DeployScript struct {
	App            string
	RuntimeVersion string
	Bucket         string
	Key            string
	Region         string
	DeployDir      string
	LogDir         string
	UnitText       string
	EnvText        string
}

const deployScriptText = `#!/bin/bash
set -uo pipefail
if ! dotnet --list-runtimes 2>/dev/null | grep -q "Microsoft.AspNetCore.App {{.RuntimeVersion}}"; then
  rpm -Uvh --force https://packages.microsoft.com/config/centos/7/packages-microsoft-prod.rpm
  yum install -y aspnetcore-runtime-{{.RuntimeVersion}} unzip
fi
systemctl stop {{.App}}.service 2>/dev/null || true
systemctl disable {{.App}}.service 2>/dev/null || true
rm -rf {{.DeployDir}} {{.LogDir}}
mkdir -p {{.DeployDir}} {{.LogDir}}
aws s3 cp s3://{{.Bucket}}/{{.Key}} /tmp/{{.App}}.zip --region {{.Region}}
unzip -o /tmp/{{.App}}.zip -d {{.DeployDir}}
rm -f /tmp/{{.App}}.zip
{{- if .EnvText}}
echo {{.EnvText | b64enc}} | base64 -d > {{.DeployDir}}/{{.App}}.env
{{- end}}
echo {{.UnitText | b64enc}} | base64 -d > /etc/systemd/system/{{.App}}.service
chmod +x {{.DeployDir}}/{{.App}}
systemctl daemon-reload
systemctl enable {{.App}}.service
systemctl start {{.App}}.service
sleep 3
systemctl status {{.App}}.service --no-pager || true
journalctl -u {{.App}}.service -n 20 --no-pager || true
tail -n 20 {{.LogDir}}/stdout.log 2>/dev/null || true
tail -n 20 {{.LogDir}}/stderr.log 2>/dev/null || true
`

const diagnosticScriptText = `#!/bin/bash
systemctl status {{.App}}.service --no-pager || true
journalctl -u {{.App}}.service -n 50 --no-pager || true
tail -n 50 {{.LogDir}}/stdout.log 2>/dev/null || true
tail -n 50 {{.LogDir}}/stderr.log 2>/dev/null || true
`

var (
	deployTemplate = gotemplate.Must(
		gotemplate.New("deploy").Funcs(sprig.TxtFuncMap()).Parse(deployScriptText))
	diagnosticTemplate = gotemplate.Must(
		gotemplate.New("diagnostic").Funcs(sprig.TxtFuncMap()).Parse(diagnosticScriptText))
)

func (s DeployScript) Render() (string, error) {
	if !safeName.MatchString(s.App) {
		return "", fmt.Errorf("App name `%s` contains characters unsafe for a remote script", s.App)
	}
	if s.DeployDir == "" {
		s.DeployDir = "/opt/" + s.App
	}
	if s.LogDir == "" {
		s.LogDir = "/var/log/" + s.App
	}
	for _, value := range []string{s.Bucket, s.Key, s.Region, s.DeployDir, s.LogDir, s.RuntimeVersion} {
		if !safePath.MatchString(value) {
			return "", fmt.Errorf("`%s` contains characters unsafe for a remote script", value)
		}
	}
	var buf bytes.Buffer
	if err := deployTemplate.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("Unable to render deploy script for `%s`: %v", s.App, err)
	}
	return buf.String(), nil
}

// DiagnosticScript prints unit status, recent journal, and log tails.
func DiagnosticScript(app string) (string, error) {
	if !safeName.MatchString(app) {
		return "", fmt.Errorf("App name `%s` contains characters unsafe for a remote script", app)
	}
	var buf bytes.Buffer
	err := diagnosticTemplate.Execute(&buf, struct{ App, LogDir string }{app, "/var/log/" + app})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CatScript prints one log file.
func CatScript(path string) (string, error) {
	if !safePath.MatchString(path) {
		return "", fmt.Errorf("Log path `%s` contains characters unsafe for a remote script", path)
	}
	return fmt.Sprintf("#!/bin/bash\ncat %s\n", path), nil
}
