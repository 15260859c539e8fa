package dataset

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/matzehuels/safetymap/pkg/httputil"
)

// IsURL reports whether source names a remote dataset rather than a file.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch downloads and normalizes the dataset at rawURL. The format comes
// from the URL path's extension; URLs without one are read as JSON.
func Fetch(ctx context.Context, rawURL string) (*Dataset, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	format := FormatJSON
	if path.Ext(u.Path) != "" {
		if format, err = FormatFromPath(u.Path); err != nil {
			return nil, err
		}
	}

	data, err := httputil.Get(ctx, nil, rawURL, map[string]string{"Accept": "application/json, application/yaml, application/toml"})
	if err != nil {
		return nil, err
	}
	ds, err := Read(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rawURL, err)
	}
	return ds, nil
}

// Open loads source, which is either a file path or an http(s) URL.
func Open(ctx context.Context, source string) (*Dataset, error) {
	if IsURL(source) {
		return Fetch(ctx, source)
	}
	return Load(source)
}
