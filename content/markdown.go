// Package content converts markdown posts into HTML fragments with diagram
// slots and keeps them loaded into the cache.
package content

import (
	"bytes"
	stdhtml "html"
	"regexp"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// diagramNode replaces fenced mermaid code blocks in the AST so the stock
// code-block renderers (including syntax highlighting) never see them.
type diagramNode struct {
	ast.BaseBlock
	Source string
}

var kindDiagramNode = ast.NewNodeKind("DiagramBlock")

func (n *diagramNode) Kind() ast.NodeKind {
	return kindDiagramNode
}

func (n *diagramNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// diagramTransformer swaps mermaid fences for diagramNodes.
type diagramTransformer struct{}

func (t *diagramTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()

	var fences []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok && string(fcb.Language(source)) == "mermaid" {
			fences = append(fences, fcb)
		}
		return ast.WalkContinue, nil
	})

	for _, fcb := range fences {
		var buf bytes.Buffer
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}

		dn := &diagramNode{Source: buf.String()}
		parent := fcb.Parent()
		if parent != nil {
			parent.ReplaceChild(parent, fcb, dn)
		}
	}
}

// diagramHTMLRenderer emits an empty marker element per diagram; the loader
// splits the fragment HTML at these markers into segments and slots.
type diagramHTMLRenderer struct{}

func (r *diagramHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindDiagramNode, r.render)
}

func (r *diagramHTMLRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*diagramNode)
	_, _ = w.WriteString(`<pre class="mermaid" data-diagram-source="`)
	_, _ = w.WriteString(stdhtml.EscapeString(n.Source))
	_, _ = w.WriteString(`"></pre>`)
	return ast.WalkContinue, nil
}

// diagramExtension wires the transformer and renderer into goldmark.
type diagramExtension struct{}

func (e *diagramExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&diagramTransformer{}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&diagramHTMLRenderer{}, 100),
	))
}

// diagramMarkerRe matches the marker elements the renderer emits.
var diagramMarkerRe = regexp.MustCompile(`<pre class="mermaid" data-diagram-source="([^"]*)"></pre>`)

// Renderer converts one markdown document into fragment pieces.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer initializes goldmark with extensions.
func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
			&diagramExtension{},
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Renderer{md: md}
}

// Render converts markdown into interleavable HTML segments plus the raw
// diagram sources found between them. len(segments) == len(sources)+1.
func (r *Renderer) Render(markdown []byte) (segments []string, sources []string, err error) {
	var buf bytes.Buffer
	if err := r.md.Convert(markdown, &buf); err != nil {
		return nil, nil, err
	}

	out := buf.String()
	matches := diagramMarkerRe.FindAllStringSubmatchIndex(out, -1)
	if len(matches) == 0 {
		return []string{out}, nil, nil
	}

	prev := 0
	for _, m := range matches {
		segments = append(segments, out[prev:m[0]])
		sources = append(sources, stdhtml.UnescapeString(out[m[2]:m[3]]))
		prev = m[1]
	}
	segments = append(segments, out[prev:])
	return segments, sources, nil
}
