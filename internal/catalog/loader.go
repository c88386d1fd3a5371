package catalog

import (
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gymrace/internal/observability"

	"gopkg.in/yaml.v3"
)

//go:embed data/exercises.xml data/media.yaml
var bundled embed.FS

// ErrUnsupportedFormat is returned by LoadFile for unknown extensions.
var ErrUnsupportedFormat = errors.New("catalog: unsupported file format")

type entry struct {
	category    string
	title       string
	description string
	media       string
}

// Load parses the XML catalog in a single forward pass over the token
// stream. Exercises whose media does not resolve are left out and reported
// in missing by media reference, or by title when the reference is empty.
// Only malformed input is an error.
func Load(r io.Reader, resolver MediaResolver) (*Catalog, []string, error) {
	dec := xml.NewDecoder(r)

	var (
		entries  []entry
		category string
		current  *entry
		field    string
		text     strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("catalog: parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "category":
				category = attr(t, "name")
			case "exercise":
				current = &entry{category: category}
			case "name", "description", "media":
				if current != nil {
					field = t.Name.Local
					text.Reset()
				}
			}
		case xml.CharData:
			if field != "" {
				text.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "category":
				category = ""
			case t.Name.Local == "exercise" && current != nil:
				entries = append(entries, *current)
				current = nil
			case current != nil && t.Name.Local == field:
				value := strings.TrimSpace(text.String())
				switch field {
				case "name":
					current.title = value
				case "description":
					current.description = value
				case "media":
					current.media = value
				}
				field = ""
			}
		}
	}

	c, missing := build(entries, resolver)
	return c, missing, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

type yamlCatalog struct {
	Categories []struct {
		Name      string `yaml:"name"`
		Exercises []struct {
			Name        string `yaml:"name"`
			Description string `yaml:"description"`
			Media       string `yaml:"media"`
		} `yaml:"exercises"`
	} `yaml:"categories"`
}

// LoadYAML reads the same hierarchy as Load from a YAML document.
func LoadYAML(r io.Reader, resolver MediaResolver) (*Catalog, []string, error) {
	var doc yamlCatalog
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("catalog: parse yaml: %w", err)
	}

	var entries []entry
	for _, cat := range doc.Categories {
		for _, ex := range cat.Exercises {
			entries = append(entries, entry{
				category:    strings.TrimSpace(cat.Name),
				title:       strings.TrimSpace(ex.Name),
				description: strings.TrimSpace(ex.Description),
				media:       strings.TrimSpace(ex.Media),
			})
		}
	}

	c, missing := build(entries, resolver)
	return c, missing, nil
}

// LoadFile opens path on fsys and picks the parser from its extension.
func LoadFile(fsys fs.FS, path string, resolver MediaResolver) (*Catalog, []string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return Load(f, resolver)
	case ".yml", ".yaml":
		return LoadYAML(f, resolver)
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func build(entries []entry, resolver MediaResolver) (*Catalog, []string) {
	if resolver == nil {
		resolver = &MediaIndex{}
	}

	exercises := make([]Exercise, 0, len(entries))
	var missing []string
	for _, e := range entries {
		url, ok := resolver.Resolve(e.media)
		if !ok {
			if e.media != "" {
				missing = append(missing, e.media)
			} else {
				missing = append(missing, e.title)
			}
			continue
		}
		exercises = append(exercises, Exercise{
			Category:    e.category,
			Title:       e.title,
			Description: e.description,
			MediaRef:    e.media,
			MediaURL:    url,
		})
	}
	return newCatalog(exercises), missing
}

// Open loads the catalog used by the server. Empty paths fall back to the
// bundled data. Missing media is logged and counted, never fatal.
func Open(catalogPath, mediaIndexPath string) (*Catalog, error) {
	var (
		indexFS   fs.FS = bundled
		indexPath       = "data/media.yaml"
	)
	if mediaIndexPath != "" {
		indexFS, indexPath = os.DirFS(filepath.Dir(mediaIndexPath)), filepath.Base(mediaIndexPath)
	}
	f, err := indexFS.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: open media index: %w", err)
	}
	index, err := LoadMediaIndex(f)
	_ = f.Close()
	if err != nil {
		return nil, err
	}

	var (
		catalogFS   fs.FS = bundled
		catalogFile       = "data/exercises.xml"
	)
	if catalogPath != "" {
		catalogFS, catalogFile = os.DirFS(filepath.Dir(catalogPath)), filepath.Base(catalogPath)
	}

	c, missing, err := LoadFile(catalogFS, catalogFile, index)
	if err != nil {
		return nil, err
	}

	observability.CatalogMissingMedia.Set(float64(len(missing)))
	if len(missing) > 0 {
		observability.Logger.Warn("catalog exercises dropped for unresolved media",
			slog.Int("count", len(missing)),
			slog.Any("missing", missing),
		)
	}
	observability.Logger.Info("exercise catalog loaded",
		slog.Int("exercises", c.Len()),
		slog.Int("categories", len(c.Categories())),
	)
	return c, nil
}
