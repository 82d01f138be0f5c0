package fsplit

import (
	"fmt"
	"regexp"
	"strings"
)

type WarningKind string

const (
	WarnUnterminated WarningKind = "unterminated"
	WarnUnbalanced   WarningKind = "unbalanced"
)

type ScanWarning struct {
	Line    int
	Kind    WarningKind
	Message string
}

func (w ScanWarning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line+1, w.Message)
}

var (
	importStartRe   = regexp.MustCompile(`^import(?:\s|\{|\*|'|"|$)`)
	reexportStartRe = regexp.MustCompile(`^export\s+(?:type\s+)?(?:\*|\{)`)
	fromClauseRe    = regexp.MustCompile(`\bfrom\s*['"][^'"]+['"]`)
	sideEffectRe    = regexp.MustCompile(`^import\s*['"]`)
	typeDeclRe      = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:type\s+[A-Za-z_$]|interface\s+[A-Za-z_$]|(?:const\s+)?enum\s+[A-Za-z_$])`)
	constDeclRe     = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(?:const|let|var)\s+(?:[A-Za-z_$]|\{|\[)`)
	functionDeclRe  = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:async\s+)?function\b`)
	classDeclRe     = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?class\b`)
	functionValueRe = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(?:const|let|var)\s+[^=]*=\s*(?:async\s+)?(?:function\b|(?:React\.)?(?:memo|forwardRef)\b|<[^=()]*>\s*\(|\([^()]*(?:\([^()]*\)[^()]*)*\)\s*(?::\s*[^=]+?)?\s*=>|[A-Za-z_$][\w$]*\s*=>)`)
	declNameRe      = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:declare\s+)?(?:async\s+)?(?:abstract\s+)?(?:function\s*\*?|class|interface|type|const\s+enum|enum|const|let|var)\s*([A-Za-z_$][\w$]*)`)
	wsRe            = regexp.MustCompile(`\s+`)
)

var (
	continuationEnds   = []string{"=>", "=", ",", "(", "[", "{", "&&", "||", "??", "?", ":", "|", "&", ".", "+", "*"}
	continuationStarts = []string{".", "?", ":", "|", "&", "=", "{", ",", "as ", "satisfies ", "extends ", "implements "}
)

type scanState int

const (
	stateIdle scanState = iota
	stateImport
	stateType
	stateConstant
	stateFunction
	stateStatement
)

func (s scanState) kind() Kind {
	switch s {
	case stateImport:
		return KindImport
	case stateType:
		return KindTypeDef
	case stateConstant:
		return KindConstant
	case stateFunction:
		return KindFunction
	}
	return KindStatement
}

type scanner struct {
	buf       *SourceBuffer
	infos     []LineInfo
	state     scanState
	start     int
	leading   int
	braces    int
	brackets  int
	decorated bool
	blocks    []Block
	warnings  []ScanWarning
}

// Scan partitions buf into balanced top-level blocks.
func Scan(buf *SourceBuffer, mode Counting) ([]Block, []ScanWarning) {
	s := &scanner{buf: buf, infos: LexLines(buf.Lines, mode), leading: -1}
	for i := range buf.Lines {
		s.step(i)
	}
	switch {
	case s.state != stateIdle:
		s.warnings = append(s.warnings, ScanWarning{
			Line:    s.start,
			Kind:    WarnUnterminated,
			Message: fmt.Sprintf("%s block never closes before end of file", s.state.kind()),
		})
		s.emit(len(buf.Lines), true)
	case s.decorated:
		s.state = stateStatement
		s.decorated = false
		s.emit(s.lastCode()+1, false)
	}
	return s.blocks, s.warnings
}

func startState(trimmed string) scanState {
	switch {
	case importStartRe.MatchString(trimmed), reexportStartRe.MatchString(trimmed):
		return stateImport
	case typeDeclRe.MatchString(trimmed):
		return stateType
	case constDeclRe.MatchString(trimmed) && !functionValueRe.MatchString(trimmed):
		return stateConstant
	case functionDeclRe.MatchString(trimmed), classDeclRe.MatchString(trimmed), constDeclRe.MatchString(trimmed):
		return stateFunction
	}
	return stateStatement
}

func (s *scanner) step(i int) {
	info := s.infos[i]
	if s.state == stateIdle {
		if !info.Code {
			s.trackComment(i)
			return
		}
		s.begin(i, startState(strings.TrimSpace(s.buf.Lines[i])))
	}

	s.braces += info.Braces
	s.brackets += info.Brackets
	if s.braces < 0 || s.brackets < 0 {
		s.warnings = append(s.warnings, ScanWarning{
			Line:    i,
			Kind:    WarnUnbalanced,
			Message: "closing delimiter without a matching opener",
		})
		s.emit(i+1, false)
		return
	}
	if s.closes(i) {
		s.emit(i+1, false)
	}
}

// trackComment remembers the comment run directly above the next declaration.
func (s *scanner) trackComment(i int) {
	switch {
	case strings.TrimSpace(s.buf.Lines[i]) == "":
		s.leading = -1
	case s.leading < 0:
		s.leading = i
	}
}

func (s *scanner) begin(i int, st scanState) {
	s.state = st
	s.braces, s.brackets = 0, 0
	if s.decorated {
		s.decorated = false
		s.leading = -1
		return
	}
	s.start = i
	if s.leading >= 0 {
		s.start = s.leading
		s.leading = -1
	}
}

func (s *scanner) closes(i int) bool {
	if s.braces > 0 || s.brackets > 0 {
		return false
	}
	info := s.infos[i]
	if info.Terminated {
		return true
	}
	if s.state == stateImport {
		line := strings.TrimSpace(s.buf.Lines[i])
		if fromClauseRe.MatchString(line) || sideEffectRe.MatchString(line) {
			return true
		}
		if next := s.nextCode(i); next >= 0 && strings.HasPrefix(strings.TrimSpace(s.buf.Lines[next]), "from") {
			return false
		}
	}
	return !s.continues(i)
}

func (s *scanner) continues(i int) bool {
	masked := strings.TrimSpace(s.infos[i].Masked)
	if strings.HasPrefix(masked, "@") && s.state == stateStatement {
		return false
	}
	for _, end := range continuationEnds {
		if strings.HasSuffix(masked, end) {
			return true
		}
	}
	next := s.nextCode(i)
	if next < 0 {
		return false
	}
	line := strings.TrimSpace(s.buf.Lines[next])
	for _, start := range continuationStarts {
		if strings.HasPrefix(line, start) {
			return true
		}
	}
	return false
}

func (s *scanner) nextCode(i int) int {
	for j := i + 1; j < len(s.infos); j++ {
		if s.infos[j].Code {
			return j
		}
	}
	return -1
}

func (s *scanner) lastCode() int {
	for j := len(s.infos) - 1; j >= 0; j-- {
		if s.infos[j].Code {
			return j
		}
	}
	return s.start
}

func (s *scanner) emit(end int, unterminated bool) {
	head := s.declIndex(s.start, end)
	first := strings.TrimSpace(s.buf.Lines[head])

	// decorators attach to the declaration that follows them
	if s.state == stateStatement && !unterminated && end < len(s.buf.Lines) && s.decoratorOnly(s.start, end) {
		s.state = stateIdle
		s.decorated = true
		return
	}

	text := s.buf.Slice(s.start, end)
	kind := s.state.kind()
	switch {
	case kind == KindImport && !isImportText(s.buf.Slice(head, end)):
		kind = KindStatement
	case kind == KindConstant && IsFunctionValue(s.masked(head, end)):
		kind = KindFunction
	}

	s.blocks = append(s.blocks, Block{
		Start:        s.start,
		End:          end,
		Lead:         head - s.start,
		Kind:         kind,
		Name:         declName(first),
		Text:         text,
		Unterminated: unterminated,
	})
	s.state = stateIdle
	s.leading = -1
	s.braces, s.brackets = 0, 0
}

func (s *scanner) masked(start, end int) string {
	parts := make([]string, 0, end-start)
	for _, info := range s.infos[start:end] {
		parts = append(parts, info.Masked)
	}
	return strings.Join(parts, "\n")
}

func (s *scanner) decoratorOnly(start, end int) bool {
	for i := start; i < end; i++ {
		if s.infos[i].Code {
			return strings.HasPrefix(strings.TrimSpace(s.infos[i].Masked), "@")
		}
	}
	return false
}

// declIndex skips attached comments and decorators.
func (s *scanner) declIndex(start, end int) int {
	depth := 0
	for i := start; i < end; i++ {
		info := s.infos[i]
		if !info.Code {
			continue
		}
		if depth > 0 || strings.HasPrefix(strings.TrimSpace(info.Masked), "@") {
			depth = max(depth+info.Braces+info.Brackets, 0)
			continue
		}
		return i
	}
	for i := start; i < end; i++ {
		if s.infos[i].Code {
			return i
		}
	}
	return start
}

func isImportText(text string) bool {
	t := strings.TrimSpace(text)
	return importStartRe.MatchString(t) || fromClauseRe.MatchString(t)
}

// IsFunctionValue reports whether a binding's value is a function expression.
func IsFunctionValue(text string) bool {
	return functionValueRe.MatchString(collapse(text))
}

func collapse(text string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(text, " "))
}

func declName(line string) string {
	if m := declNameRe.FindStringSubmatch(line); m != nil {
		switch m[1] {
		case "function", "class", "async":
			return ""
		}
		return m[1]
	}
	return ""
}
