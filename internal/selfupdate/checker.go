// Package selfupdate checks the release manifest and replaces the running
// binary with a newer build.
package selfupdate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrDevBuild      = errors.New("cannot update a development build")
	ErrAlreadyLatest = errors.New("already running the latest version")
	ErrChecksum      = errors.New("checksum verification failed")
	ErrInProgress    = errors.New("Another update is already in progress. Please wait for it to complete.")
)

// AppName prefixes the User-Agent header.
const AppName = "eflwizard"

// Release is a manifest that is newer than the running build.
type Release struct {
	Manifest *Manifest
	Current  string
}

// Checker compares the running version with the published manifest.
type Checker struct {
	client      *http.Client
	manifestURL string
	version     string
	execPath    func() (string, error)
}

type Option func(*Checker)

func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) { ch.client = c }
}

func WithTimeout(d time.Duration) Option {
	return func(ch *Checker) { ch.client = &http.Client{Timeout: d} }
}

func WithManifestURL(u string) Option {
	return func(ch *Checker) { ch.manifestURL = u }
}

// withExecPath overrides the binary that gets replaced; used in tests.
func withExecPath(fn func() (string, error)) Option {
	return func(ch *Checker) { ch.execPath = fn }
}

// NewChecker returns a checker for the given running version.
func NewChecker(version string, opts ...Option) *Checker {
	c := &Checker{
		client:  &http.Client{Timeout: 20 * time.Second},
		version: version,
		execPath: func() (string, error) {
			p, err := os.Executable()
			if err != nil {
				return "", err
			}
			return filepath.EvalSymlinks(p)
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Version is the running version.
func (c *Checker) Version() string { return c.version }

func (c *Checker) userAgent() string {
	return fmt.Sprintf("%s/%s", AppName, c.version)
}

// Check fetches the manifest. It returns ErrDevBuild for development
// builds and ErrAlreadyLatest when the manifest is not newer.
func (c *Checker) Check(ctx context.Context) (*Release, error) {
	if c.version == DevVersion {
		return nil, ErrDevBuild
	}
	if c.manifestURL == "" {
		return nil, errors.New("no manifest URL configured")
	}
	m, err := FetchManifest(ctx, c.client, c.manifestURL, c.userAgent())
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	if Compare(m.Version, c.version) <= 0 {
		return nil, ErrAlreadyLatest
	}
	return &Release{Manifest: m, Current: c.version}, nil
}
