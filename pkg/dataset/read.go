package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/safetymap/pkg/errors"
)

// Format identifies a dataset file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"unsupported dataset extension %q (must be .json, .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// The raw* types mirror the file layout with loosely typed ids and evidence so
// a single decode works for all three encodings.
type rawDataset struct {
	Categories     []rawCategory     `json:"categories" yaml:"categories" toml:"categories"`
	Techniques     []rawTechnique    `json:"techniques" yaml:"techniques" toml:"techniques"`
	Evidence       []rawEvidence     `json:"evidence" yaml:"evidence" toml:"evidence"`
	ProviderColors map[string]string `json:"providerColors" yaml:"providerColors" toml:"providerColors"`
}

type rawCategory struct {
	ID    any    `json:"id" yaml:"id" toml:"id"`
	Name  string `json:"name" yaml:"name" toml:"name"`
	Color string `json:"color" yaml:"color" toml:"color"`
}

type rawTechnique struct {
	ID              any      `json:"id" yaml:"id" toml:"id"`
	Name            string   `json:"name" yaml:"name" toml:"name"`
	CategoryID      any      `json:"categoryId" yaml:"categoryId" toml:"categoryId"`
	Description     string   `json:"description" yaml:"description" toml:"description"`
	LifecycleStages []string `json:"lifecycleStages" yaml:"lifecycleStages" toml:"lifecycleStages"`
}

type rawEvidence struct {
	Provider   string `json:"provider" yaml:"provider" toml:"provider"`
	Category   string `json:"category" yaml:"category" toml:"category"`
	Technique  string `json:"technique" yaml:"technique" toml:"technique"`
	Confidence string `json:"confidence" yaml:"confidence" toml:"confidence"`
	Evidence   any    `json:"evidence" yaml:"evidence" toml:"evidence"`
}

// Read decodes a dataset in the given format from r and normalizes it.
//
// Read returns an ErrCodeInvalidDataset error if the input cannot be decoded
// or if it is structurally unusable:
//   - a category or technique without a name
//   - two categories sharing an id
//   - an evidence record without a provider or technique
//
// Read does not close r.
func Read(r io.Reader, format Format) (*Dataset, error) {
	var raw rawDataset
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode json")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode yaml")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode toml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	return normalize(raw)
}

// Load reads the dataset file at path, choosing the format from its extension.
func Load(path string) (*Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// cleanName trims a display name and collapses runs of whitespace and
// control characters to single spaces. Names become node ids, so evidence
// and category names must be cleaned the same way to keep matching.
func cleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func normalize(raw rawDataset) (*Dataset, error) {
	ds := &Dataset{
		Categories:     make([]Category, 0, len(raw.Categories)),
		Techniques:     make([]Technique, 0, len(raw.Techniques)),
		Evidence:       make([]EvidenceRecord, 0, len(raw.Evidence)),
		ProviderColors: raw.ProviderColors,
	}

	ids := make(map[string]bool, len(raw.Categories))
	for i, c := range raw.Categories {
		name := cleanName(c.Name)
		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "category %d has no name", i)
		}
		id := scalarText(c.ID)
		if ids[id] {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "duplicate category id %q", id)
		}
		ids[id] = true
		ds.Categories = append(ds.Categories, Category{ID: id, Name: name, Color: strings.TrimSpace(c.Color)})
	}

	for i, t := range raw.Techniques {
		name := cleanName(t.Name)
		if name == "" {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "technique %d has no name", i)
		}
		ds.Techniques = append(ds.Techniques, Technique{
			ID:              scalarText(t.ID),
			Name:            name,
			CategoryID:      scalarText(t.CategoryID),
			Description:     strings.TrimSpace(t.Description),
			LifecycleStages: t.LifecycleStages,
		})
	}

	for i, e := range raw.Evidence {
		rec := EvidenceRecord{
			Provider:   cleanName(e.Provider),
			Category:   cleanName(e.Category),
			Technique:  cleanName(e.Technique),
			Confidence: ParseConfidence(e.Confidence),
			Evidence:   NormalizeEvidence(e.Evidence),
		}
		if rec.Provider == "" || rec.Technique == "" {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "evidence %d needs a provider and a technique", i)
		}
		ds.Evidence = append(ds.Evidence, rec)
	}

	return ds, nil
}
