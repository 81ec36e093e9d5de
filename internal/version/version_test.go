package version

import (
	"strings"
	"testing"
)

func TestBannerPlain(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	tests := map[string]string{
		"0.1.0-dev":            "0.1.0-dev",
		"1.2.3-rc.1+build.123": "1.2.3-rc.1+build.123",
		"nightly":              "nightly",
		"  ":                   "dev",
	}
	for in, want := range tests {
		Version = in
		if got := Banner(false); got != want {
			t.Errorf("Banner(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBannerColored(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "1.2.3-dev"
	got := Banner(true)
	if !strings.Contains(got, "\x1b[") || !strings.HasSuffix(got, "-dev") {
		t.Fatalf("Banner = %q", got)
	}
	// colored output must not leak into later plain renders
	if Banner(false) != "1.2.3-dev" {
		t.Fatalf("plain banner = %q", Banner(false))
	}
}

func BenchmarkBanner(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Banner(true)
	}
}
