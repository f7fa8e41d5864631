package selfupdate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var ErrHTMLManifest = errors.New("Invalid manifest (HTML received)")

// Manifest describes the latest published release.
type Manifest struct {
	Version string `json:"version"`
	URL     string `json:"url"`
	SHA256  string `json:"sha256,omitempty"`
	Notes   Notes  `json:"notes,omitempty"`
}

// Notes are release notes. The manifest may carry a single string or a
// list of lines.
type Notes []string

func (n *Notes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*n = nil
		} else {
			*n = Notes{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	*n = list
	return nil
}

// String joins list notes as bullets.
func (n Notes) String() string {
	switch len(n) {
	case 0:
		return ""
	case 1:
		return n[0]
	}
	lines := make([]string, len(n))
	for i, l := range n {
		lines[i] = "• " + l
	}
	return strings.Join(lines, "\n")
}

const manifestSchema = `{
  "type": "object",
  "required": ["version", "url"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "url": {"type": "string", "minLength": 1},
    "sha256": {"type": "string", "pattern": "^([0-9a-fA-F]{64})?$"},
    "notes": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func manifestValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(manifestSchema))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://manifest.json", doc); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile("schema://manifest.json")
	})
	return compiledSchema, schemaErr
}

// NormalizeURL rewrites a github.com blob link to its raw form.
func NormalizeURL(u string) string {
	if strings.Contains(u, "github.com") && strings.Contains(u, "/blob/") {
		u = strings.Replace(u, "https://github.com/", "https://raw.githubusercontent.com/", 1)
		u = strings.Replace(u, "/blob/", "/", 1)
	}
	return u
}

// ParseManifest validates and decodes a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	head := data
	if len(head) > 200 {
		head = head[:200]
	}
	if bytes.Contains(bytes.ToLower(head), []byte("<html")) {
		return nil, ErrHTMLManifest
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	sch, err := manifestValidator()
	if err != nil {
		return nil, fmt.Errorf("compile manifest schema: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}

// FetchManifest downloads and parses the manifest at url.
func FetchManifest(ctx context.Context, client *http.Client, url, userAgent string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, NormalizeURL(url), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return ParseManifest(data)
}
