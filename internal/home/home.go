// Package home resolves the orgsync home directory and the
// user-profile-relative paths the exporter writes to.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the orgsync home directory.
	DefaultDirName = ".orgsync"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"

	// ExportFileName is the default export CSV written by the export command.
	ExportFileName = "orga_ids.csv"

	// IngestFileName is the CSV the ingest command writes and, when it
	// already exists, reads to seed the processed-ID set.
	IngestFileName = "V2.csv"
)

// Dir represents the orgsync home directory structure.
type Dir struct {
	path    string
	profile string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.orgsync).
func New(path string) (*Dir, error) {
	profile, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	if path == "" {
		path = filepath.Join(profile, DefaultDirName)
	}

	return &Dir{path: path, profile: profile}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// DesktopPath returns a path on the user's Desktop.
func (d *Dir) DesktopPath(name string) string {
	return filepath.Join(d.profile, "Desktop", name)
}

// ExportPath returns the default destination for the export CSV.
func (d *Dir) ExportPath() string {
	return d.DesktopPath(ExportFileName)
}

// IngestPath returns the default destination for the ingest CSV.
func (d *Dir) IngestPath() string {
	return d.DesktopPath(IngestFileName)
}

// EnsureExists creates the home directory if it doesn't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("failed to create home directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
