package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DeduplicatesKeepingOrder(t *testing.T) {
	m, err := New([]string{"b", "a", "b", "c", "a"})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "c"}, m.Patterns())
	assert.Equal(t, 3, m.Len())
}

func TestNew_InvalidRegex(t *testing.T) {
	_, err := New([]string{"("})
	assert.Error(t, err)
}

func TestNew_InvalidGlob(t *testing.T) {
	_, err := New([]string{"glob:[a-"})
	assert.Error(t, err)
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { MustNew([]string{"["}) })
}

func TestTest_SubstringSearch(t *testing.T) {
	m := MustNew([]string{`\.tmp`})

	assert.True(t, m.Test("file.tmp"))
	assert.True(t, m.Test("a.tmp.bak"), "regex search is not anchored")
	assert.False(t, m.Test("file.txt"))
}

func TestTest_AnyPatternMatches(t *testing.T) {
	m := MustNew([]string{`^foo`, `bar$`})

	assert.True(t, m.Test("foo.go"))
	assert.True(t, m.Test("x.bar"))
	assert.False(t, m.Test("baz"))
}

func TestTest_OrderDoesNotMatter(t *testing.T) {
	a := MustNew([]string{`^foo`, `bar$`})
	b := MustNew([]string{`bar$`, `^foo`})

	for _, c := range []string{"foo", "xbar", "nope", "foobar"} {
		assert.Equal(t, a.Test(c), b.Test(c), c)
	}
}

func TestTest_EmptyAndNilMatchNothing(t *testing.T) {
	var nilMatcher *Matcher
	assert.False(t, nilMatcher.Test("anything"))

	empty := MustNew(nil)
	assert.False(t, empty.Test("anything"))
	assert.Nil(t, nilMatcher.Patterns())
}

func TestTest_Glob(t *testing.T) {
	m := MustNew([]string{"glob:/**/node_modules", "glob:*.swp"})

	assert.True(t, m.Test("/web/node_modules"))
	assert.True(t, m.Test(".main.go.swp"))
	assert.False(t, m.Test("/web/node_modules/pkg"))
	assert.False(t, m.Test("main.go"))
}

func TestDefaults(t *testing.T) {
	files := MustNew(DefaultFilePatterns)
	dirs := MustNew(DefaultDirPatterns)

	tests := []struct {
		name     string
		matcher  *Matcher
		input    string
		expected bool
	}{
		{"gitignore basename", files, ".gitignore", true},
		{"DS_Store basename", files, ".DS_Store", true},
		{"gitignore with suffix", files, ".gitignore.bak", true},
		{"regular file", files, "main.go", false},
		{"gitignore not at start", files, "b.gitignore", false},
		{"git dir at top level", dirs, "/.git", true},
		{"nested git dir", dirs, "/vendor/lib/.git", true},
		{"git dir child", dirs, "/.git/objects", false},
		{"github dir", dirs, "/.github", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.matcher.Test(tt.input))
		})
	}
}
