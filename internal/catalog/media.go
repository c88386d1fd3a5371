package catalog

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// MediaResolver maps a media reference from the catalog source to a
// location the client can fetch.
type MediaResolver interface {
	Resolve(ref string) (string, bool)
}

// MediaIndex resolves references through a ref -> path table. Relative
// paths are joined onto BaseURL.
type MediaIndex struct {
	BaseURL string            `yaml:"base_url"`
	Media   map[string]string `yaml:"media"`
}

// LoadMediaIndex decodes a YAML media index.
func LoadMediaIndex(r io.Reader) (*MediaIndex, error) {
	var idx MediaIndex
	if err := yaml.NewDecoder(r).Decode(&idx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode media index: %w", err)
	}
	if idx.Media == nil {
		idx.Media = map[string]string{}
	}
	return &idx, nil
}

func (m *MediaIndex) Resolve(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || m == nil {
		return "", false
	}
	path, ok := m.Media[ref]
	if !ok || path == "" {
		return "", false
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path, true
	}
	if m.BaseURL == "" {
		return path, true
	}
	joined, err := url.JoinPath(m.BaseURL, path)
	if err != nil {
		return "", false
	}
	return joined, true
}

// ResolverFunc adapts a function to MediaResolver.
type ResolverFunc func(ref string) (string, bool)

func (f ResolverFunc) Resolve(ref string) (string, bool) {
	return f(ref)
}
