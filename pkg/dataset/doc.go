// Package dataset loads the records the unified chart is built from.
//
// # Overview
//
// A dataset is four collections: categories, techniques, evidence records and
// an optional provider color palette. Files may be JSON, YAML or TOML; the
// format is chosen from the file extension by [Load], or explicitly with
// [Read].
//
// # JSON Format
//
//	{
//	  "categories": [{"id": 1, "name": "Data", "color": "#2563eb"}],
//	  "techniques": [
//	    {"id": 1, "name": "Filtering", "categoryId": 1,
//	     "description": "...", "lifecycleStages": ["pre-training"]}
//	  ],
//	  "evidence": [
//	    {"provider": "Acme", "category": "Data", "technique": "Filtering",
//	     "confidence": "High", "evidence": "Model card, section 3"}
//	  ],
//	  "providerColors": {"Acme": "#dc2626"}
//	}
//
// Ids may be integers or strings; they are kept as strings.
//
// # Evidence Content
//
// The free-form "evidence" field of a record accepts a string, an array or an
// object. [ParseContent] turns it into a tagged [Content] value at the input
// boundary and [Content.Strings] flattens it into the canonical []string
// stored on [EvidenceRecord]:
//
//	"text"                        → ["text"]
//	["a", ["b", "c"]]             → ["a", "b", "c"]
//	{"url": "x", "notes": ["y"]}  → ["notes: y", "url: x"]
//	null                          → []
//
// Confidence values are matched case-insensitively against High, Medium and
// Low; anything else becomes Unknown.
package dataset
