package ixpconf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ixp-twin/twinctl/pkg/audit"
	"github.com/ixp-twin/twinctl/pkg/util"
)

// Store keeps named configuration documents as files in one directory.
// Create and Update validate a document before writing it, so the directory
// only ever holds documents that passed validation when stored.
type Store struct {
	dir  string
	user string
	opts ValidateOptions
}

// NewStore returns a store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string) *Store {
	return &Store{dir: dir, user: currentUser()}
}

// WithUser sets the user recorded in audit events.
func (s *Store) WithUser(user string) *Store {
	s.user = user
	return s
}

// WithValidateOptions sets the options used when validating documents.
func (s *Store) WithValidateOptions(opts ValidateOptions) *Store {
	s.opts = opts
	return s
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// List returns the names of stored documents in sorted order. A missing
// directory holds no documents.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatFor(e.Name()); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Get loads and decodes a stored document without validating it.
func (s *Store) Get(name string) (*Config, error) {
	path, format, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, util.NewNotFoundError("config", name)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Decode(data, format)
}

// Create validates cfg and stores it under a new name.
func (s *Store) Create(name string, cfg *Config) error {
	return s.write(audit.OpConfigCreate, name, cfg, false)
}

// Update validates cfg and replaces an existing document.
func (s *Store) Update(name string, cfg *Config) error {
	return s.write(audit.OpConfigUpdate, name, cfg, true)
}

// Delete removes a stored document.
func (s *Store) Delete(name string) (err error) {
	start := time.Now()
	defer func() { s.record(audit.OpConfigDelete, name, start, err) }()

	path, _, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return util.NewNotFoundError("config", name)
		}
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	util.WithConfig(name).Info("Configuration deleted")
	return nil
}

// Check loads a stored document and validates it.
func (s *Store) Check(name string) (*Config, error) {
	cfg, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	return cfg, cfg.ValidateWith(s.opts)
}

func (s *Store) write(op, name string, cfg *Config, mustExist bool) (err error) {
	start := time.Now()
	defer func() { s.record(op, name, start, err) }()

	path, format, err := s.resolve(name)
	if err != nil {
		return err
	}

	_, statErr := os.Stat(path)
	exists := statErr == nil
	switch {
	case mustExist && !exists:
		return util.NewNotFoundError("config", name)
	case !mustExist && exists:
		return util.NewExistsError("config", name)
	}

	if err := cfg.ValidateWith(s.opts); err != nil {
		util.WithConfig(name).Warnf("Rejected configuration: %v", err)
		return err
	}

	data, err := Encode(cfg, format)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if mustExist {
		err = os.WriteFile(path, data, 0644)
	} else {
		err = createFile(path, data)
	}
	if errors.Is(err, fs.ErrExist) {
		return util.NewExistsError("config", name)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	util.WithConfig(name).Infof("Configuration stored (%s)", op)
	return nil
}

// resolve maps a document name to its path, refusing names that would
// escape the store directory.
func (s *Store) resolve(name string) (string, Format, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", "", fmt.Errorf("%w: invalid document name %q", util.ErrInvalidConfig, name)
	}
	format, err := FormatFor(name)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}
	return filepath.Join(s.dir, name), format, nil
}

func (s *Store) record(op, name string, start time.Time, err error) {
	event := audit.NewEvent(s.user, op).WithConfig(name).Finish(start, err)
	if logErr := audit.Log(event); logErr != nil {
		util.Warnf("audit: %v", logErr)
	}
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

// IsRejected reports whether err is a validation rejection rather than an
// I/O or lookup failure.
func IsRejected(err error) bool {
	return errors.Is(err, util.ErrValidationFailed)
}

// createFile writes data to a new file at path, failing with fs.ErrExist
// when the file is already there.
func createFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
