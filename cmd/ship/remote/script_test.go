package remote

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestDeployScriptRender(t *testing.T) {
	script, err := DeployScript{
		App:            "App",
		RuntimeVersion: "6.0",
		Bucket:         "deploy-bucket",
		Key:            "artifacts/App.zip",
		Region:         "us-east-1",
		UnitText:       "[Unit]\nDescription=App\n",
		EnvText:        "ASPNETCORE_ENVIRONMENT=Production\n",
	}.Render()
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}

	for _, want := range []string{
		"aspnetcore-runtime-6.0",
		"aws s3 cp s3://deploy-bucket/artifacts/App.zip",
		"--region us-east-1",
		"systemctl stop App.service",
		"rm -rf /opt/App /var/log/App",
		"unzip -o /tmp/App.zip -d /opt/App",
		"systemctl daemon-reload",
		"systemctl enable App.service",
		"journalctl -u App.service",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script is missing %q", want)
		}
	}

	// free-form payloads travel base64-encoded, never verbatim
	if strings.Contains(script, "[Unit]") {
		t.Error("unit text embedded verbatim")
	}
	if !strings.Contains(script, base64.StdEncoding.EncodeToString([]byte("[Unit]\nDescription=App\n"))) {
		t.Error("unit text not base64-encoded")
	}
	if !strings.Contains(script, base64.StdEncoding.EncodeToString([]byte("ASPNETCORE_ENVIRONMENT=Production\n"))) {
		t.Error("env text not base64-encoded")
	}
}

func TestDeployScriptNoEnv(t *testing.T) {
	script, err := DeployScript{
		App:            "App",
		RuntimeVersion: "6.0",
		Bucket:         "deploy-bucket",
		Key:            "artifacts/App.zip",
		Region:         "us-east-1",
		UnitText:       "[Unit]\n",
	}.Render()
	if err != nil {
		t.Fatalf("Render() = %v", err)
	}
	if strings.Contains(script, "App.env") {
		t.Error("env file written without env text")
	}
}

func TestDeployScriptRejectsUnsafeValues(t *testing.T) {
	tests := []struct {
		name   string
		script DeployScript
	}{
		{"Should reject app name with shell metacharacters", DeployScript{
			App: "App; rm -rf /", RuntimeVersion: "6.0",
			Bucket: "b", Key: "k", Region: "us-east-1", UnitText: "u",
		}},
		{"Should reject bucket with spaces", DeployScript{
			App: "App", RuntimeVersion: "6.0",
			Bucket: "b $(whoami)", Key: "k", Region: "us-east-1", UnitText: "u",
		}},
		{"Should reject key with backticks", DeployScript{
			App: "App", RuntimeVersion: "6.0",
			Bucket: "b", Key: "k`id`", Region: "us-east-1", UnitText: "u",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.script.Render(); err == nil {
				t.Error("Render() = nil, want error")
			}
		})
	}
}

func TestDiagnosticScript(t *testing.T) {
	script, err := DiagnosticScript("App")
	if err != nil {
		t.Fatalf("DiagnosticScript() = %v", err)
	}
	for _, want := range []string{
		"systemctl status App.service",
		"journalctl -u App.service",
		"/var/log/App/stdout.log",
		"/var/log/App/stderr.log",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script is missing %q", want)
		}
	}
	if _, err := DiagnosticScript("App; id"); err == nil {
		t.Error("DiagnosticScript() = nil for unsafe name, want error")
	}
}

func TestCatScript(t *testing.T) {
	script, err := CatScript("/var/log/App/stdout.log")
	if err != nil {
		t.Fatalf("CatScript() = %v", err)
	}
	if !strings.Contains(script, "cat /var/log/App/stdout.log") {
		t.Errorf("script = %q", script)
	}
	if _, err := CatScript("/var/log/App/stdout.log; id"); err == nil {
		t.Error("CatScript() = nil for unsafe path, want error")
	}
}

func TestValidInstanceId(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"i-0123456789abcdef0", true},
		{"i-01234567", true},
		{"i-0123456", false},
		{"i-ABCDEF012", false},
		{"instance-01234567", false},
		{"i-0123456789abcdef0 extra", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidInstanceId(tt.id); got != tt.want {
			t.Errorf("ValidInstanceId(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
