package dataset

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ContentKind discriminates the shapes the evidence field may take.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentText
	ContentList
	ContentObject
)

// Content is the tagged form of a free-form evidence value.
// Exactly one of Text, Items or Fields is meaningful, selected by Kind.
type Content struct {
	Kind   ContentKind
	Text   string
	Items  []Content
	Fields []Field // sorted by key
}

// Field is one key of an object-shaped Content.
type Field struct {
	Key   string
	Value Content
}

// ParseContent converts a decoded JSON, YAML or TOML value into Content.
// Scalars other than strings (numbers, booleans, timestamps) become text.
func ParseContent(v any) Content {
	switch x := v.(type) {
	case nil:
		return Content{Kind: ContentNone}
	case string:
		return Content{Kind: ContentText, Text: x}
	case []any:
		items := make([]Content, len(x))
		for i, item := range x {
			items[i] = ParseContent(item)
		}
		return Content{Kind: ContentList, Items: items}
	case []string:
		items := make([]Content, len(x))
		for i, item := range x {
			items[i] = Content{Kind: ContentText, Text: item}
		}
		return Content{Kind: ContentList, Items: items}
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: ParseContent(x[k])}
		}
		return Content{Kind: ContentObject, Fields: fields}
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[scalarText(k)] = val
		}
		return ParseContent(m)
	default:
		return Content{Kind: ContentText, Text: scalarText(v)}
	}
}

// Strings flattens c into the canonical evidence list.
//
// Text yields itself (blank text yields nothing), lists are flattened in
// order, and each object field yields "key: value" with nested values joined
// by "; ". Fields whose value flattens to nothing are dropped.
func (c Content) Strings() []string {
	switch c.Kind {
	case ContentText:
		s := strings.TrimSpace(c.Text)
		if s == "" {
			return nil
		}
		return []string{s}
	case ContentList:
		var out []string
		for _, item := range c.Items {
			out = append(out, item.Strings()...)
		}
		return out
	case ContentObject:
		var out []string
		for _, f := range c.Fields {
			vals := f.Value.Strings()
			if len(vals) == 0 {
				continue
			}
			out = append(out, f.Key+": "+strings.Join(vals, "; "))
		}
		return out
	default:
		return nil
	}
}

// NormalizeEvidence is shorthand for ParseContent(v).Strings().
func NormalizeEvidence(v any) []string {
	return ParseContent(v).Strings()
}

// scalarText renders ids and non-string evidence scalars.
func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}
