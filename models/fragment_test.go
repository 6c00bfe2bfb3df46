package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragmentHTMLInterleaves(t *testing.T) {
	f := &Fragment{
		Segments: []string{"<p>a</p>", "<p>b</p>", "<p>c</p>"},
		Diagrams: []DiagramBlock{
			{Content: "<svg>1</svg>"},
			{Content: "<svg>2</svg>"},
		},
	}
	assert.Equal(t, "<p>a</p><svg>1</svg><p>b</p><svg>2</svg><p>c</p>", f.HTML())
}

func TestFragmentHTMLNoDiagrams(t *testing.T) {
	assert.Equal(t, "", (&Fragment{}).HTML())
	assert.Equal(t, "<p>only</p>", (&Fragment{Segments: []string{"<p>only</p>"}}).HTML())
}
