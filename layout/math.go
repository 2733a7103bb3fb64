package layout

import (
	"bytes"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
)

// RenderLaTeX typesets a single display formula.
func (e *Engine) RenderLaTeX(latex string) error {
	return e.renderMathMarkdown("$$" + latex + "$$")
}

// renderMathMarkdown converts TeX delimited markdown to HTML with MathML
// islands and typesets the result.
func (e *Engine) renderMathMarkdown(source string) error {
	md := goldmark.New(goldmark.WithExtensions(treeblood.MathML()))
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return err
	}
	return e.RenderHTML(buf.String())
}

// hasMath reports a $$ block or a closed $...$ pair on one line.
func hasMath(source string) bool {
	if strings.Contains(source, "$$") {
		return true
	}
	for _, line := range strings.Split(source, "\n") {
		i := strings.IndexByte(line, '$')
		if i < 0 || i+1 >= len(line) || line[i+1] == ' ' {
			continue
		}
		if j := strings.IndexByte(line[i+1:], '$'); j > 0 && line[i+j] != ' ' {
			return true
		}
	}
	return false
}
