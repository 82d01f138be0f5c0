package fsplit

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Naming derives every output path and import specifier from one original path.
type Naming struct {
	Dir    string
	Base   string
	Ext    string
	Layout Layout
}

func NewNaming(path string, layout Layout) Naming {
	ext := filepath.Ext(path)
	return Naming{
		Dir:    filepath.Dir(path),
		Base:   strings.TrimSuffix(filepath.Base(path), ext),
		Ext:    ext,
		Layout: layout,
	}
}

func (n Naming) OriginalPath() string {
	return filepath.Join(n.Dir, n.Base+n.Ext)
}

func (n Naming) outDir() string {
	if n.Layout == LayoutDirectory {
		return filepath.Join(n.Dir, n.Base)
	}
	return n.Dir
}

func (n Naming) CategoryPath(c Category) string {
	return filepath.Join(n.outDir(), n.Base+"-"+c.Suffix()+n.Ext)
}

// CategorySpecifier is the import specifier of a category file as seen from its siblings.
func (n Naming) CategorySpecifier(c Category) string {
	return "./" + n.Base + "-" + c.Suffix()
}

func (n Naming) AggregatorPath() string {
	if n.Layout == LayoutDirectory {
		return filepath.Join(n.outDir(), "index"+n.Ext)
	}
	return filepath.Join(n.Dir, n.Base+"-index"+n.Ext)
}

// AggregatorSpecifier is the import specifier of the aggregator as seen from the original.
func (n Naming) AggregatorSpecifier() string {
	if n.Layout == LayoutDirectory {
		return "./" + n.Base + "/index"
	}
	return "./" + n.Base + "-index"
}

// Rebase rewrites a relative specifier for a file moved one directory down.
func (n Naming) Rebase(spec string) string {
	if n.Layout != LayoutDirectory {
		return spec
	}
	switch {
	case strings.HasPrefix(spec, "./"):
		return "../" + strings.TrimPrefix(spec, "./")
	case strings.HasPrefix(spec, "../"):
		return "../" + spec
	}
	return spec
}

func (n Naming) Ident() string { return ExportIdent(n.Base) }

// ExportIdent turns a hyphenated base name into a PascalCase identifier.
func ExportIdent(base string) string {
	upper := cases.Upper(language.Und)
	var b strings.Builder
	for _, seg := range strings.Split(base, "-") {
		seg = strings.Map(func(r rune) rune {
			if r == '_' || r == '$' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
				return r
			}
			return -1
		}, seg)
		if seg == "" {
			continue
		}
		b.WriteString(upper.String(seg[:1]))
		b.WriteString(seg[1:])
	}
	ident := b.String()
	if ident == "" {
		return "Module"
	}
	if ident[0] >= '0' && ident[0] <= '9' {
		return "_" + ident
	}
	return ident
}
