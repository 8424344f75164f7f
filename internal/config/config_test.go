package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Backend != BackendVM {
		t.Errorf("default backend is %q, want %q", cfg.Backend, BackendVM)
	}
	if cfg.TaskWorkers != 0 {
		t.Errorf("default task workers is %d, want 0", cfg.TaskWorkers)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendVM {
		t.Errorf("backend is %q, want %q", cfg.Backend, BackendVM)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	contents := "backend: tree\ntask_workers: 4\nsource_extensions:\n  - .eng\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendTree {
		t.Errorf("backend is %q, want %q", cfg.Backend, BackendTree)
	}
	if cfg.TaskWorkers != 4 {
		t.Errorf("task workers is %d, want 4", cfg.TaskWorkers)
	}
	if !cfg.IsSourceFile("script.eng") {
		t.Error("extra source extension not honored")
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []string{
		"backend: turbo\n",
		"task_workers: -1\n",
		"backend: [nope\n",
	}
	for _, contents := range tests {
		if _, err := Parse([]byte(contents)); err == nil {
			t.Errorf("accepted %q", contents)
		}
	}
}

func TestIsSourceFile(t *testing.T) {
	cfg := Default()
	if !cfg.IsSourceFile("examples/fibonacci" + SourceFileExt) {
		t.Error("built-in extension rejected")
	}
	if cfg.IsSourceFile("chunk" + BytecodeFileExt) {
		t.Error("bytecode extension accepted as source")
	}
}
