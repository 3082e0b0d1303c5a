package unit

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseEnvFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "App.env")
	content := `# overrides for production
ASPNETCORE_ENVIRONMENT=Production

ConnectionStrings__Default=Server=db;Database=store
`
	if err := os.WriteFile(filename, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	env, err := ParseEnvFile(filename)
	if err != nil {
		t.Fatalf("ParseEnvFile() = %v", err)
	}
	want := map[string]string{
		"ASPNETCORE_ENVIRONMENT":     "Production",
		"ConnectionStrings__Default": "Server=db;Database=store",
	}
	if !reflect.DeepEqual(env, want) {
		t.Errorf("ParseEnvFile() = %v, want %v", env, want)
	}
}

func TestParseEnvFileAbsent(t *testing.T) {
	env, err := ParseEnvFile(filepath.Join(t.TempDir(), "App.env"))
	if err != nil {
		t.Errorf("ParseEnvFile() = %v, want nil", err)
	}
	if env != nil {
		t.Errorf("ParseEnvFile() = %v, want nil for absent file", env)
	}
}

func TestParseEnvFileMalformed(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "App.env")
	if err := os.WriteFile(filename, []byte("GOOD=1\nnot a pair\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := ParseEnvFile(filename)
	if err == nil {
		t.Fatal("ParseEnvFile() = nil, want error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want offending line number", err)
	}
}

func TestRenderEnvFile(t *testing.T) {
	got := RenderEnvFile(map[string]string{
		"B": "2",
		"A": "1",
	})
	if got != "A=1\nB=2\n" {
		t.Errorf("RenderEnvFile() = %q", got)
	}
	if RenderEnvFile(nil) != "" {
		t.Error("RenderEnvFile(nil) != \"\"")
	}
}
