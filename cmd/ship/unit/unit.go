// Copyright (c) 2023 Stackship, Inc.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package unit

import (
	"bytes"
	"fmt"
	gotemplate "text/template"

	"github.com/Masterminds/sprig"
)

// Unit describes the generated systemd service for the deployed binary.
type Unit struct {
	App              string
	Description      string
	WorkingDirectory string
	ExecStart        string
	EnvironmentFile  string
	User             string
}

const unitTemplate = `[Unit]
Description={{.Description | default (printf "%s service" .App)}}
After=network.target

[Service]
WorkingDirectory={{.WorkingDirectory}}
ExecStart={{.ExecStart}}
{{- if .EnvironmentFile}}
EnvironmentFile={{.EnvironmentFile}}
{{- end}}
Restart=always
RestartSec=5
User={{.User | default "www-data"}}
StandardOutput=append:/var/log/{{.App}}/stdout.log
StandardError=append:/var/log/{{.App}}/stderr.log
NoNewPrivileges=true
ProtectSystem=full
ProtectHome=true
PrivateTmp=true
PrivateDevices=true

[Install]
WantedBy=multi-user.target
`

var unitGoTemplate = gotemplate.Must(
	gotemplate.New("unit").Funcs(sprig.TxtFuncMap()).Parse(unitTemplate))

func Render(u Unit) (string, error) {
	if u.App == "" {
		return "", fmt.Errorf("Unit app name must not be empty")
	}
	if u.WorkingDirectory == "" || u.ExecStart == "" {
		return "", fmt.Errorf("Unit for `%s` must set working directory and start command", u.App)
	}
	var buf bytes.Buffer
	if err := unitGoTemplate.Execute(&buf, u); err != nil {
		return "", fmt.Errorf("Unable to render unit for `%s`: %v", u.App, err)
	}
	return buf.String(), nil
}
