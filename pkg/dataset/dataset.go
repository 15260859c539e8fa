package dataset

import (
	"strings"
)

// Confidence is the normalized confidence rating of an evidence record.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh    Confidence = "High"
	ConfidenceMedium  Confidence = "Medium"
	ConfidenceLow     Confidence = "Low"
	ConfidenceUnknown Confidence = "Unknown"
)

// ParseConfidence matches s case-insensitively against the known levels.
func ParseConfidence(s string) Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ConfidenceHigh
	case "medium":
		return ConfidenceMedium
	case "low":
		return ConfidenceLow
	default:
		return ConfidenceUnknown
	}
}

// Category is a top-level grouping of techniques.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Technique is a named mechanism belonging to one category.
type Technique struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	CategoryID      string   `json:"categoryId"`
	Description     string   `json:"description,omitempty"`
	LifecycleStages []string `json:"lifecycleStages,omitempty"`
}

// EvidenceRecord links a provider to a technique. Category and technique are
// referenced by display name, not id.
type EvidenceRecord struct {
	Provider   string     `json:"provider"`
	Category   string     `json:"category"`
	Technique  string     `json:"technique"`
	Confidence Confidence `json:"confidence"`
	Evidence   []string   `json:"evidence,omitempty"`
}

// Dataset is a fully normalized input set.
type Dataset struct {
	Categories     []Category        `json:"categories"`
	Techniques     []Technique       `json:"techniques"`
	Evidence       []EvidenceRecord  `json:"evidence"`
	ProviderColors map[string]string `json:"providerColors,omitempty"`
}

// Providers returns the distinct provider names appearing in the evidence,
// in first-seen order.
func (d *Dataset) Providers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range d.Evidence {
		if !seen[e.Provider] {
			seen[e.Provider] = true
			out = append(out, e.Provider)
		}
	}
	return out
}
