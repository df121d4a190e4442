// Package config loads hangar.yaml into a domain.Config.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader for YAML files.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the file at path. A missing file yields domain.DefaultConfig.
func (l *Loader) Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultConfig(), nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err), "read config"), "path", path)
	}

	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, err), "parse config"), "path", path)
	}

	cfg, err := resolve(&file, filepath.Dir(path))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

// resolve applies defaults and validates the decoded file.
// Relative paths are taken relative to the directory holding the config file.
func resolve(file *File, base string) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if root := strings.TrimSpace(file.InstallRoot); root != "" {
		cfg.InstallRoot = absolute(base, root)
		cfg.LogFile = domain.DefaultLogPath(cfg.InstallRoot)
	}
	if logFile := strings.TrimSpace(file.LogFile); logFile != "" {
		cfg.LogFile = absolute(base, logFile)
	}
	if exe := strings.TrimSpace(file.Executable); exe != "" {
		if filepath.Base(exe) != exe {
			return nil, invalid("executable", exe)
		}
		cfg.Executable = exe
	}
	cfg.AllowUncheckedDownloads = file.AllowUncheckedDownloads
	cfg.ServerListURL = strings.TrimSpace(file.ServerList.URL)

	var err error
	if cfg.PollInterval, err = duration("server_list.interval", file.ServerList.Interval, cfg.PollInterval); err != nil {
		return nil, err
	}
	if cfg.ServerTTL, err = duration("server_list.ttl", file.ServerList.TTL, cfg.ServerTTL); err != nil {
		return nil, err
	}

	for i, seed := range file.Servers {
		s := domain.ServerSeed{
			Address:  strings.TrimSpace(seed.Address),
			Fork:     seed.Fork,
			Build:    seed.Build,
			Download: seed.Download,
		}
		if s.Address == "" {
			return nil, zerr.With(invalid("servers.address", s.Address), "index", i)
		}
		if err := s.Version().Validate(); err != nil {
			return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigInvalid, err), "servers"), "index", i)
		}
		cfg.Servers = append(cfg.Servers, s)
	}

	return cfg, nil
}

func duration(field, raw string, fallback time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, invalid(field, raw)
	}
	return d, nil
}

func absolute(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func invalid(field string, value any) error {
	return zerr.With(zerr.Wrap(domain.ErrConfigInvalid, field), "value", value)
}

var _ ports.ConfigLoader = (*Loader)(nil)
