package fsplit

import (
	"fmt"
	"strings"
	"time"
)

// SourceBuffer is the read-only view of one input file.
type SourceBuffer struct {
	Path     string
	Encoding string
	Lines    []string
	CRLF     bool
	BOM      bool
}

func (b *SourceBuffer) Newline() string {
	if b.CRLF {
		return "\r\n"
	}
	return "\n"
}

func (b *SourceBuffer) Text() string { return strings.Join(b.Lines, "\n") }

// Slice returns the text of lines [start, end).
func (b *SourceBuffer) Slice(start, end int) string {
	return strings.Join(b.Lines[start:end], "\n")
}

type Kind int

const (
	KindImport Kind = iota
	KindTypeDef
	KindConstant
	KindFunction
	KindStatement
)

func (k Kind) String() string {
	switch k {
	case KindImport:
		return "import"
	case KindTypeDef:
		return "type"
	case KindConstant:
		return "constant"
	case KindFunction:
		return "function"
	case KindStatement:
		return "statement"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Block is a half-open line range [Start, End) holding one declaration.
// The first Lead lines are the comments and decorators attached to it.
type Block struct {
	Start        int
	End          int
	Lead         int
	Kind         Kind
	Name         string
	Text         string
	Unterminated bool
}

// Body returns the text from the declaration line on.
func (b Block) Body() string {
	text := b.Text
	for i := 0; i < b.Lead; i++ {
		j := strings.IndexByte(text, '\n')
		if j < 0 {
			return ""
		}
		text = text[j+1:]
	}
	return text
}

// Head returns the trimmed declaration line.
func (b Block) Head() string {
	body := b.Body()
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}

type Category int

const (
	CategoryTypes Category = iota
	CategoryConstants
	CategoryUtilities
	CategorySubComponents
	CategoryMain
	CategoryOther
)

// Categories lists every category in emission order.
var Categories = []Category{
	CategoryTypes,
	CategoryConstants,
	CategoryUtilities,
	CategorySubComponents,
	CategoryMain,
	CategoryOther,
}

func (c Category) String() string {
	switch c {
	case CategoryTypes:
		return "Types"
	case CategoryConstants:
		return "Constants"
	case CategoryUtilities:
		return "Utilities"
	case CategorySubComponents:
		return "SubComponents"
	case CategoryMain:
		return "Main"
	case CategoryOther:
		return "Other"
	}
	panic(fmt.Sprintf("fsplit: unknown category %d", int(c)))
}

// Suffix is the file name suffix of the category file.
func (c Category) Suffix() string {
	switch c {
	case CategoryTypes:
		return "types"
	case CategoryConstants:
		return "constants"
	case CategoryUtilities:
		return "utils"
	case CategorySubComponents:
		return "components"
	case CategoryMain:
		return "main"
	case CategoryOther:
		return "other"
	}
	panic(fmt.Sprintf("fsplit: unknown category %d", int(c)))
}

type ImportSpecifier struct {
	Imported string
	Local    string
	Type     bool
}

// ImportStatement is one parsed import (or re-export) statement.
type ImportStatement struct {
	Default    string
	Namespace  string
	Specifiers []ImportSpecifier
	Source     string
	Raw        string
	TypeOnly   bool
	SideEffect bool
	Reexport   bool
}

// Names returns the local names bound by the statement, in source order.
func (s ImportStatement) Names() []string {
	var names []string
	if s.Default != "" {
		names = append(names, s.Default)
	}
	if s.Namespace != "" {
		names = append(names, s.Namespace)
	}
	for _, sp := range s.Specifiers {
		names = append(names, sp.Local)
	}
	return names
}

type PlanEntry struct {
	Blocks   []Block
	Imports  []ImportStatement
	Declared []string
}

// ModulePlan maps each non-empty category to its blocks and imports.
type ModulePlan struct {
	Entries       map[Category]*PlanEntry
	Directives    []string
	SideEffects   []ImportStatement
	Reexports     []ImportStatement
	DefaultExport string
	Quote         string
}

func (p *ModulePlan) Has(c Category) bool {
	e, ok := p.Entries[c]
	return ok && len(e.Blocks) > 0
}

// Present returns the non-empty categories in emission order.
func (p *ModulePlan) Present() []Category {
	var out []Category
	for _, c := range Categories {
		if p.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

type BackupRecord struct {
	OriginalPath string
	BackupPath   string
	Timestamp    time.Time
	Hash         string
}

type TransactionResult struct {
	Success      bool
	Skipped      bool
	WrittenFiles []string
	Files        []WrittenFile
	Error        string
	Backup       *BackupRecord
	Warnings     []string
	State        TxState
	ID           string
}

type Summary struct {
	Split    []string
	Created  []string
	Skipped  []string
	Restored []string
	Deleted  []string
	Failed   []string
	Warnings []string
	Message  string
}
