package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Cracking the Résumé Screen":  "cracking-the-resume-screen",
		"  10 Tips -- for  LinkedIn!": "10-tips-for-linkedin",
		"Über Café Interviews":        "uber-cafe-interviews",
		"???":                         "",
		"already-a-slug":              "already-a-slug",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 40))
	assert.LessOrEqual(t, len(got), maxSlugLength+1)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitList(" a, ,b c ,"))
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"},
		SplitList("https://a.example, https://b.example", " https://c.example "))
}
