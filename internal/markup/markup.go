// Package markup turns submitted quote text into display HTML and into the
// plain text that length and uniqueness checks are computed on.
//
// Quotes use BBCode. Render and Strip split the input on one spoiler pattern
// and compile every segment to the same tag tree, so what is validated is
// exactly the text that will be displayed.
package markup

import (
	"regexp"
	"strings"

	"github.com/frustra/bbcode"
	"github.com/microcosm-cc/bluemonday"
)

// spoilerPattern matches the first closing tag after an opening one.
var spoilerPattern = regexp.MustCompile(`\[spoiler\](.*?)\[/spoiler\]`)

// decorativeEntities are replaced by their literal in Render and deleted in Strip.
var decorativeEntities = []struct {
	pattern *regexp.Regexp
	literal string
}{
	{regexp.MustCompile(`&[rl]dquo;`), `"`},
	{regexp.MustCompile(`&lt;`), "<"},
	{regexp.MustCompile(`&gt;`), ">"},
}

// inlineTags are the BBCode tags a quote may use. Anything else is kept as
// literal text.
var inlineTags = []string{"b", "i", "u", "s", "url"}

// Processor renders and strips quote markup. A single instance is safe for
// concurrent use.
type Processor struct {
	compiler bbcode.Compiler
	display  *bluemonday.Policy
}

// NewProcessor builds a processor that understands [b], [i], [u], [s] and
// [url] plus the [spoiler] tag.
func NewProcessor() *Processor {
	compiler := bbcode.NewCompiler(false, false)
	allowed := make(map[string]bool, len(inlineTags))
	for _, tag := range inlineTags {
		allowed[tag] = true
	}
	for tag := range bbcode.DefaultTagCompilers {
		if !allowed[tag] {
			compiler.SetTag(tag, nil)
		}
	}

	display := bluemonday.UGCPolicy()
	display.AllowAttrs("class").Matching(regexp.MustCompile(`^spoiler$`)).OnElements("span")

	return &Processor{compiler: compiler, display: display}
}

// Render returns the sanitised display form of text.
func (p *Processor) Render(text string) string {
	var b strings.Builder
	p.eachSegment(text, func(segment string, spoiler bool) {
		tree := p.compile(segment, true)
		if spoiler {
			b.WriteString(`<span class="spoiler">`)
			b.WriteString(tree.Compile(true))
			b.WriteString(`</span>`)
			return
		}
		b.WriteString(tree.Compile(true))
	})
	return strings.TrimSpace(p.display.Sanitize(b.String()))
}

// Strip returns text with all markup and decorative entities removed.
func (p *Processor) Strip(text string) string {
	var b strings.Builder
	p.eachSegment(text, func(segment string, _ bool) {
		writeText(&b, p.compile(segment, false))
	})
	return strings.TrimSpace(b.String())
}

// Length is the character count used by validation.
func Length(stripped string) int {
	return len([]rune(stripped))
}

// compile builds the tag tree for one segment. Decorative entities are
// rewritten in the text nodes only, so both modes share one tree shape.
func (p *Processor) compile(segment string, keepEntities bool) *bbcode.HTMLTag {
	tree := p.compiler.CompileTree(bbcode.Parse(bbcode.Lex(segment)))
	rewriteEntities(tree, keepEntities)
	return tree
}

// eachSegment calls fn for the text between spoiler spans and for the inner
// text of each span, in order.
func (p *Processor) eachSegment(text string, fn func(segment string, spoiler bool)) {
	last := 0
	for _, m := range spoilerPattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			fn(text[last:m[0]], false)
		}
		fn(text[m[2]:m[3]], true)
		last = m[1]
	}
	if last < len(text) {
		fn(text[last:], false)
	}
}

// writeText appends the visible text of a compiled tree. Values hold the
// unescaped text and line breaks are <br> nodes.
func writeText(b *strings.Builder, tag *bbcode.HTMLTag) {
	b.WriteString(tag.Value)
	if tag.Name == "br" {
		b.WriteByte('\n')
	}
	for _, child := range tag.Children {
		writeText(b, child)
	}
}

func rewriteEntities(tag *bbcode.HTMLTag, keep bool) {
	for _, e := range decorativeEntities {
		literal := ""
		if keep {
			literal = e.literal
		}
		tag.Value = e.pattern.ReplaceAllLiteralString(tag.Value, literal)
	}
	for _, child := range tag.Children {
		rewriteEntities(child, keep)
	}
}
