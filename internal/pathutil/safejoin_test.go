package pathutil

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestSafeJoin(t *testing.T) {
	root := filepath.FromSlash("/tmp/w")

	tests := []struct {
		name     string
		segments []string
		expected string
	}{
		{
			name:     "no segments",
			segments: nil,
			expected: "/tmp/w",
		},
		{
			name:     "single child",
			segments: []string{"a.txt"},
			expected: "/tmp/w/a.txt",
		},
		{
			name:     "nested segments",
			segments: []string{"sub", "b.txt"},
			expected: "/tmp/w/sub/b.txt",
		},
		{
			name:     "parent traversal is clamped",
			segments: []string{"../../etc/passwd"},
			expected: "/tmp/w/etc/passwd",
		},
		{
			name:     "absolute segment stays under root",
			segments: []string{"/etc", "passwd"},
			expected: "/tmp/w/etc/passwd",
		},
		{
			name:     "dot segments collapse",
			segments: []string{"./a/./b/../c"},
			expected: "/tmp/w/a/c",
		},
		{
			name:     "only dotdot",
			segments: []string{".."},
			expected: "/tmp/w",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeJoin(root, tt.segments...)
			want := filepath.FromSlash(tt.expected)
			if got != want {
				t.Errorf("SafeJoin(%q, %q) = %q, want %q", root, tt.segments, got, want)
			}
		})
	}
}

func TestSafeJoin_NeverEscapesRoot(t *testing.T) {
	root := filepath.FromSlash("/srv/data")
	inputs := []string{
		"../../../../",
		"a/../../..",
		"/../..",
		"..\\..",
		"x/y/../../../z",
	}
	for _, in := range inputs {
		got := SafeJoin(root, in)
		if got != root && !strings.HasPrefix(got, root+string(filepath.Separator)) {
			t.Errorf("SafeJoin(%q, %q) = %q escapes root", root, in, got)
		}
	}
}

func TestEntryKey(t *testing.T) {
	root := filepath.FromSlash("/tmp/w")

	tests := []struct {
		path     string
		expected string
	}{
		{"/tmp/w", "/"},
		{"/tmp/w/a.txt", "/a.txt"},
		{"/tmp/w/sub/deep/file", "/sub/deep/file"},
		{"/tmp/other", ""},
		{"/tmp", ""},
	}

	for _, tt := range tests {
		got := EntryKey(root, filepath.FromSlash(tt.path))
		if got != tt.expected {
			t.Errorf("EntryKey(%q, %q) = %q, want %q", root, tt.path, got, tt.expected)
		}
	}
}

func TestKeyPath_RoundTrip(t *testing.T) {
	root := filepath.FromSlash("/tmp/w")
	for _, key := range []string{"/", "/a.txt", "/sub/b"} {
		p := KeyPath(root, key)
		if got := EntryKey(root, p); got != key {
			t.Errorf("EntryKey(KeyPath(%q)) = %q", key, got)
		}
	}
}

func TestParentKey(t *testing.T) {
	tests := map[string]string{
		"/":         "",
		"":          "",
		"/a":        "/",
		"/a/b":      "/a",
		"/a/b/c.go": "/a/b",
	}
	for key, want := range tests {
		if got := ParentKey(key); got != want {
			t.Errorf("ParentKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestIsDescendantKey(t *testing.T) {
	tests := []struct {
		ancestor string
		key      string
		expected bool
	}{
		{"/", "/a", true},
		{"/", "/", false},
		{"/a", "/a/b", true},
		{"/a", "/a/b/c", true},
		{"/a", "/a", false},
		{"/a", "/ab", false},
		{"/a", "/b/a", false},
	}
	for _, tt := range tests {
		if got := IsDescendantKey(tt.ancestor, tt.key); got != tt.expected {
			t.Errorf("IsDescendantKey(%q, %q) = %v, want %v", tt.ancestor, tt.key, got, tt.expected)
		}
	}
}

func TestIsChildKey(t *testing.T) {
	if !IsChildKey("/", "/a") {
		t.Error("expected /a to be a child of /")
	}
	if IsChildKey("/", "/a/b") {
		t.Error("expected /a/b not to be an immediate child of /")
	}
	if !IsChildKey("/a", "/a/b") {
		t.Error("expected /a/b to be a child of /a")
	}
}
