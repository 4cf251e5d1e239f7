package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "portal")
	var s sample
	if err := Load(writeFile(t, "name: ${SAMPLE_NAME}\ncount: 3\n"), &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "portal" || s.Count != 3 {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_Errors(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Error("missing file should fail")
	}
	if err := Load(writeFile(t, "name: [unclosed"), &s); err == nil {
		t.Error("bad YAML should fail")
	}
	err := Load(writeFile(t, "count: 1\n"), &sample{})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("validation error = %v", err)
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Name: "default"}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" {
		t.Errorf("name = %q", s.Name)
	}

	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &sample{}); err == nil {
		t.Error("defaults are still validated")
	}

	if err := LoadOptional(writeFile(t, "count: 9\n"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "default" || s.Count != 9 {
		t.Errorf("got %+v", s)
	}
}
