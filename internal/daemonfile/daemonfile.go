// Package daemonfile reads the descriptor file the daemon writes once it is
// accepting connections.
//
// The file is YAML with a pid and a port. The client only ever reads it: a
// missing file means no daemon is running or the daemon is not ready yet.
// Write exists for the daemon side and for tests.
package daemonfile

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformed marks a descriptor file that exists but cannot be parsed.
var ErrMalformed = errors.New("malformed daemon file")

// File is the daemon's readiness record.
type File struct {
	PID  int    `yaml:"pid"`
	Port uint16 `yaml:"port"`
}

// Address returns the loopback address the daemon listens on.
func (f File) Address() string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(int(f.Port)))
}

// Load reads the descriptor file at path. It returns (nil, nil) when the file
// does not exist, is empty, or does not name a port yet.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read daemon file %q: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformed, path, err)
	}
	if file.Port == 0 {
		return nil, nil
	}
	return &file, nil
}

// Write stores file at path atomically: readers see either the old content or
// the complete new content.
func Write(path string, file File) error {
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode daemon file: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create daemon file directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".daemon-*.yml")
	if err != nil {
		return fmt.Errorf("create temp daemon file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp daemon file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp daemon file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("install daemon file %q: %w", path, err)
	}
	return nil
}

// Remove deletes the descriptor file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove daemon file %q: %w", path, err)
	}
	return nil
}
