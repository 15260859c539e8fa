package buildinfo

import (
	"strings"
	"testing"
)

func TestStamped(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)
	Version, Commit, Date = "v0.3.0", "abc1234", "2026-10-01"

	if got, want := Template(), "{{.Name}} v0.3.0 (abc1234, 2026-10-01)\n"; got != want {
		t.Errorf("Template() = %q, want %q", got, want)
	}
	if got := UserAgent(); got != "safetymap/v0.3.0" {
		t.Errorf("UserAgent() = %q", got)
	}
	f := Fields()
	if f["version"] != "v0.3.0" || f["commit"] != "abc1234" || f["built"] != "2026-10-01" {
		t.Errorf("Fields() = %v", f)
	}
}

func TestUnstamped(t *testing.T) {
	if !strings.HasSuffix(UserAgent(), "/"+Version) {
		t.Errorf("UserAgent() = %q should end with the version", UserAgent())
	}
}
