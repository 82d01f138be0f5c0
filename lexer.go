package fsplit

import (
	"fmt"
	"strings"
)

// Counting selects how delimiters are counted.
type Counting int

const (
	// CountLiteral ignores delimiters inside strings, template literals and comments.
	CountLiteral Counting = iota
	// CountRaw counts every delimiter character, including those inside literals.
	CountRaw
)

func (c Counting) String() string {
	if c == CountRaw {
		return "raw"
	}
	return "literal"
}

func ParseCounting(s string) (Counting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "literal":
		return CountLiteral, nil
	case "raw":
		return CountRaw, nil
	}
	return CountLiteral, fmt.Errorf("unknown counting mode %q", s)
}

type lexState int

const (
	lexCode lexState = iota
	lexSingleQuote
	lexDoubleQuote
	lexTemplate
	lexBlockComment
)

// LineInfo describes the structural content of one source line.
type LineInfo struct {
	Braces     int
	Brackets   int
	Opened     bool
	Terminated bool
	Code       bool
	Masked     string
}

// Lexer carries quote, template and comment state across lines.
type Lexer struct {
	mode   Counting
	state  lexState
	interp []int
}

func NewLexer(mode Counting) *Lexer {
	return &Lexer{mode: mode}
}

func (l *Lexer) Line(s string) LineInfo {
	if l.mode == CountRaw {
		return rawLine(s)
	}

	var info LineInfo
	mask := []byte(s)
	blank := func(i int) { mask[i] = ' ' }

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch l.state {
		case lexBlockComment:
			blank(i)
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				blank(i + 1)
				i++
				l.state = lexCode
			}

		case lexSingleQuote, lexDoubleQuote:
			info.Code = true
			quote := byte('\'')
			if l.state == lexDoubleQuote {
				quote = '"'
			}
			if c == '\\' {
				blank(i)
				if i+1 < len(s) {
					blank(i + 1)
					i++
				}
				continue
			}
			if c == quote {
				l.state = lexCode
				continue
			}
			blank(i)

		case lexTemplate:
			info.Code = true
			if c == '\\' {
				blank(i)
				if i+1 < len(s) {
					blank(i + 1)
					i++
				}
				continue
			}
			if c == '`' {
				l.state = lexCode
				continue
			}
			if c == '$' && i+1 < len(s) && s[i+1] == '{' {
				l.interp = append(l.interp, 0)
				l.state = lexCode
				i++
				continue
			}
			blank(i)

		case lexCode:
			if c == ' ' || c == '\t' || c == '\r' {
				continue
			}
			if c == '/' && i+1 < len(s) {
				if s[i+1] == '/' {
					for j := i; j < len(s); j++ {
						blank(j)
					}
					i = len(s)
					continue
				}
				if s[i+1] == '*' {
					blank(i)
					blank(i + 1)
					i++
					l.state = lexBlockComment
					continue
				}
			}
			info.Code = true
			// an apostrophe glued to a word is JSX text (Don't), not a string
			if c == '\'' && i > 0 && isWordByte(s[i-1]) {
				continue
			}
			l.code(c, &info)
		}
	}

	// quoted strings end at the line break unless it is escaped
	if (l.state == lexSingleQuote || l.state == lexDoubleQuote) && !strings.HasSuffix(s, "\\") {
		l.state = lexCode
	}
	info.Masked = string(mask)
	return info
}

func (l *Lexer) code(c byte, info *LineInfo) {
	n := len(l.interp)
	switch c {
	case '\'':
		l.state = lexSingleQuote
	case '"':
		l.state = lexDoubleQuote
	case '`':
		l.state = lexTemplate
	case '{':
		if n > 0 {
			l.interp[n-1]++
			return
		}
		info.Braces++
		info.Opened = true
	case '}':
		if n > 0 {
			if l.interp[n-1] == 0 {
				l.interp = l.interp[:n-1]
				l.state = lexTemplate
			} else {
				l.interp[n-1]--
			}
			return
		}
		info.Braces--
	case '(', '[':
		if n == 0 {
			info.Brackets++
		}
	case ')', ']':
		if n == 0 {
			info.Brackets--
		}
	case ';':
		if n == 0 {
			info.Terminated = true
		}
	}
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func rawLine(s string) LineInfo {
	info := LineInfo{Masked: s}
	trimmed := strings.TrimSpace(s)
	info.Code = trimmed != "" &&
		!strings.HasPrefix(trimmed, "//") &&
		!strings.HasPrefix(trimmed, "/*") &&
		!strings.HasPrefix(trimmed, "*")

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			info.Braces++
			info.Opened = true
		case '}':
			info.Braces--
		case '(', '[':
			info.Brackets++
		case ')', ']':
			info.Brackets--
		case ';':
			info.Terminated = true
		}
	}
	return info
}

// LexLines runs a fresh lexer over lines.
func LexLines(lines []string, mode Counting) []LineInfo {
	l := NewLexer(mode)
	infos := make([]LineInfo, len(lines))
	for i, line := range lines {
		infos[i] = l.Line(line)
	}
	return infos
}

// MaskText blanks comments and literal contents, keeping template interpolations.
func MaskText(text string) string {
	lines := strings.Split(text, "\n")
	infos := LexLines(lines, CountLiteral)
	masked := make([]string, len(infos))
	for i, info := range infos {
		masked[i] = info.Masked
	}
	return strings.Join(masked, "\n")
}

// BraceBalance returns the net number of unclosed braces in text.
func BraceBalance(text string, mode Counting) int {
	net := 0
	for _, info := range LexLines(strings.Split(text, "\n"), mode) {
		net += info.Braces
	}
	return net
}
