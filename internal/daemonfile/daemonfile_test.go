package daemonfile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"tab/internal/daemonfile"
)

func TestLoadMissingFile(t *testing.T) {
	file, err := daemonfile.Load(filepath.Join(t.TempDir(), "daemon-pid.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if file != nil {
		t.Fatalf("expected nil file, got %+v", file)
	}
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "daemon-pid.yml")
	want := daemonfile.File{PID: 4242, Port: 52100}
	if err := daemonfile.Write(path, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := daemonfile.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || *got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
	if addr := got.Address(); addr != "127.0.0.1:52100" {
		t.Fatalf("Address = %q", addr)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the daemon file, found %d entries", len(entries))
	}
}

func TestLoadParsesHandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon-pid.yml")
	if err := os.WriteFile(path, []byte("---\npid: 12\nport: 8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := daemonfile.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || got.PID != 12 || got.Port != 8080 {
		t.Fatalf("Load = %+v", got)
	}
}

func TestLoadNotReady(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"whitespace": "\n  \n",
		"no port":    "pid: 10\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "daemon-pid.yml")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatal(err)
			}
			got, err := daemonfile.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got != nil {
				t.Fatalf("expected not-ready nil file, got %+v", got)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon-pid.yml")
	if err := os.WriteFile(path, []byte("port: [not, a, number\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := daemonfile.Load(path)
	if !errors.Is(err, daemonfile.ErrMalformed) {
		t.Fatalf("Load error = %v, want ErrMalformed", err)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon-pid.yml")
	if err := daemonfile.Remove(path); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
	if err := daemonfile.Write(path, daemonfile.File{PID: 1, Port: 1}); err != nil {
		t.Fatal(err)
	}
	if err := daemonfile.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("file still present: %v", err)
	}
}
