package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/safetymap/pkg/errors"
)

const sampleJSON = `{
  "categories": [
    {"id": 1, "name": "Data", "color": "#2563eb"},
    {"id": "gov", "name": "Governance"}
  ],
  "techniques": [
    {"id": 1, "name": "Filtering", "categoryId": 1, "lifecycleStages": ["pre-training"]},
    {"id": 2, "name": "Audits", "categoryId": "gov", "description": " third party "}
  ],
  "evidence": [
    {"provider": "Acme", "category": "Data", "technique": "Filtering", "confidence": "high",
     "evidence": {"url": "https://example.com", "notes": ["a", "b"]}},
    {"provider": "Globex", "category": "Governance", "technique": "Audits", "confidence": "n/a",
     "evidence": "Annual report"}
  ],
  "providerColors": {"Acme": "#dc2626"}
}`

const sampleYAML = `
categories:
  - id: 1
    name: Data
    color: "#2563eb"
  - id: gov
    name: Governance
techniques:
  - id: 1
    name: Filtering
    categoryId: 1
    lifecycleStages: [pre-training]
  - id: 2
    name: Audits
    categoryId: gov
    description: " third party "
evidence:
  - provider: Acme
    category: Data
    technique: Filtering
    confidence: high
    evidence:
      url: https://example.com
      notes: [a, b]
  - provider: Globex
    category: Governance
    technique: Audits
    confidence: n/a
    evidence: Annual report
providerColors:
  Acme: "#dc2626"
`

const sampleTOML = `
[providerColors]
Acme = "#dc2626"

[[categories]]
id = 1
name = "Data"
color = "#2563eb"

[[categories]]
id = "gov"
name = "Governance"

[[techniques]]
id = 1
name = "Filtering"
categoryId = 1
lifecycleStages = ["pre-training"]

[[techniques]]
id = 2
name = "Audits"
categoryId = "gov"
description = " third party "

[[evidence]]
provider = "Acme"
category = "Data"
technique = "Filtering"
confidence = "high"
[evidence.evidence]
url = "https://example.com"
notes = ["a", "b"]

[[evidence]]
provider = "Globex"
category = "Governance"
technique = "Audits"
confidence = "n/a"
evidence = "Annual report"
`

func wantSample() *Dataset {
	return &Dataset{
		Categories: []Category{
			{ID: "1", Name: "Data", Color: "#2563eb"},
			{ID: "gov", Name: "Governance"},
		},
		Techniques: []Technique{
			{ID: "1", Name: "Filtering", CategoryID: "1", LifecycleStages: []string{"pre-training"}},
			{ID: "2", Name: "Audits", CategoryID: "gov", Description: "third party"},
		},
		Evidence: []EvidenceRecord{
			{Provider: "Acme", Category: "Data", Technique: "Filtering", Confidence: ConfidenceHigh,
				Evidence: []string{"notes: a; b", "url: https://example.com"}},
			{Provider: "Globex", Category: "Governance", Technique: "Audits", Confidence: ConfidenceUnknown,
				Evidence: []string{"Annual report"}},
		},
		ProviderColors: map[string]string{"Acme": "#dc2626"},
	}
}

func TestReadFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, sampleJSON},
		{"yaml", FormatYAML, sampleYAML},
		{"toml", FormatTOML, sampleTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if want := wantSample(); !reflect.DeepEqual(got, want) {
				t.Errorf("Read mismatch\n got: %+v\nwant: %+v", got, want)
			}
		})
	}
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `{"categories": [`},
		{"unnamed category", `{"categories": [{"id": 1, "name": " "}]}`},
		{"duplicate category id", `{"categories": [{"id": 1, "name": "A"}, {"id": "1", "name": "B"}]}`},
		{"unnamed technique", `{"techniques": [{"id": 1, "categoryId": 1}]}`},
		{"evidence without provider", `{"evidence": [{"technique": "X"}]}`},
		{"evidence without technique", `{"evidence": [{"provider": "Acme"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), FormatJSON)
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("Read error = %v, want INVALID_DATASET", err)
			}
		})
	}
}

func TestReadCleansNames(t *testing.T) {
	input := `{
  "categories": [{"id": 1, "name": " Red\tteam\u0001ing "}],
  "techniques": [{"id": 1, "name": "Jail\nbreak  prompts", "categoryId": 1}],
  "evidence": [{"provider": "Ac\u0007me", "category": "Red team ing", "technique": "Jail break prompts"}]
}`
	ds, err := Read(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := ds.Categories[0].Name; got != "Red team ing" {
		t.Errorf("category name = %q", got)
	}
	if got := ds.Techniques[0].Name; got != "Jail break prompts" {
		t.Errorf("technique name = %q", got)
	}
	ev := ds.Evidence[0]
	if ev.Provider != "Ac me" || ev.Category != "Red team ing" || ev.Technique != "Jail break prompts" {
		t.Errorf("evidence = %+v", ev)
	}
}

func TestReadUnknownFormat(t *testing.T) {
	_, err := Read(strings.NewReader("{}"), Format("xml"))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestReadEmptyYAML(t *testing.T) {
	ds, err := Read(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(ds.Categories)+len(ds.Techniques)+len(ds.Evidence) != 0 {
		t.Errorf("empty input should give an empty dataset, got %+v", ds)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"data.json": sampleJSON,
		"data.yml":  sampleYAML,
		"data.toml": sampleTOML,
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		ds, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if len(ds.Evidence) != 2 {
			t.Errorf("Load(%s): %d evidence records, want 2", name, len(ds.Evidence))
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(filepath.Join(dir, "data.csv")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("csv error = %v, want INVALID_FORMAT", err)
	}
}

func TestParseConfidence(t *testing.T) {
	tests := map[string]Confidence{
		"High":     ConfidenceHigh,
		" medium ": ConfidenceMedium,
		"LOW":      ConfidenceLow,
		"":         ConfidenceUnknown,
		"certain":  ConfidenceUnknown,
		"Unknown":  ConfidenceUnknown,
	}
	for in, want := range tests {
		if got := ParseConfidence(in); got != want {
			t.Errorf("ParseConfidence(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProviders(t *testing.T) {
	ds := &Dataset{Evidence: []EvidenceRecord{
		{Provider: "B"}, {Provider: "A"}, {Provider: "B"},
	}}
	if got := ds.Providers(); !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("Providers() = %v", got)
	}
}
