package fsplit

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Snippet is one piece of source handed to analyze mode.
type Snippet struct {
	Path    string
	Lang    string
	Content string
}

var pathInHintRegex = regexp.MustCompile("^`([^`\n]+)`")

var langExtensions = map[string]string{
	"ts":         ".ts",
	"typescript": ".ts",
	"tsx":        ".tsx",
	"js":         ".js",
	"javascript": ".js",
	"jsx":        ".jsx",
	"mjs":        ".mjs",
	"cjs":        ".cjs",
}

// ExtractSnippets returns the fenced code blocks of a markdown document, or
// the whole content as one snippet when it has none.
func ExtractSnippets(content string, extensions []string) ([]Snippet, error) {
	source := []byte(content)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var snippets []Snippet
	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var sn Snippet
		if fenced.Info != nil {
			if info := strings.Fields(string(fenced.Info.Text(source))); len(info) > 0 {
				sn.Lang = info[0]
			}
		}

		sn.Content = rawLines(fenced, source)

		if prev := fenced.PreviousSibling(); prev != nil {
			if p, ok := prev.(*ast.Paragraph); ok {
				sn.Path = ExtractPathFromHint(rawLines(p, source))
			}
		}
		if sn.Path == "" {
			sn.Path = fmt.Sprintf("snippet-%d%s", len(snippets)+1, extensionForLang(sn.Lang))
		}
		if HasAllowedExtension(strings.ToLower(sn.Path), extensions) {
			snippets = append(snippets, sn)
		}
		return ast.WalkSkipChildren, nil
	}
	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	if len(snippets) == 0 && !strings.Contains(content, "```") {
		snippets = append(snippets, Snippet{Path: "stdin.tsx", Content: content})
	}
	return snippets, nil
}

// rawLines returns the unparsed source of a block node, keeping inline markup.
func rawLines(n ast.Node, source []byte) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	return b.String()
}

func ExtractPathFromHint(hint string) string {
	if match := pathInHintRegex.FindStringSubmatch(strings.TrimSpace(hint)); len(match) > 1 {
		path := strings.TrimSpace(match[1])
		if !strings.Contains(path, " ") {
			return path
		}
	}
	return ""
}

func extensionForLang(lang string) string {
	if ext, ok := langExtensions[strings.ToLower(lang)]; ok {
		return ext
	}
	return ".tsx"
}
