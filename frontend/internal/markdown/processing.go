// Package markdown turns backend-supplied text into safe HTML.
package markdown

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

func New() *TextProcessor {
	// headings, raw HTML and images are not parsed: messages are short notes
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewListParser(), 300),
			util.Prioritized(parser.NewListItemParser(), 400),
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewBlockquoteParser(), 800),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewLinkParser(), 200),
			util.Prioritized(parser.NewAutoLinkParser(), 300),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
		parser.WithParagraphTransformers(
			util.Prioritized(parser.LinkReferenceParagraphTransformer, 100),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(goldhtml.WithHardWraps()),
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &TextProcessor{md: md, policy: policy, strict: bluemonday.StrictPolicy()}
}

// Render converts a message body to sanitised HTML. Conversion errors fall
// back to the escaped source text.
func (tp *TextProcessor) Render(text string) template.HTML {
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(strings.TrimSpace(tp.policy.Sanitize(buf.String())))
}

// Plain strips any markup from short backend strings (notifications, error
// texts). The result is plain text; templates escape it as usual.
func (tp *TextProcessor) Plain(text string) string {
	return strings.TrimSpace(html.UnescapeString(tp.strict.Sanitize(text)))
}
