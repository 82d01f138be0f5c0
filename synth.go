package fsplit

import (
	"fmt"
	"regexp"
	"strings"
)

type FileRole int

const (
	RoleCategory FileRole = iota
	RoleAggregator
	RoleOriginal
)

func (r FileRole) String() string {
	switch r {
	case RoleCategory:
		return "category"
	case RoleAggregator:
		return "aggregator"
	case RoleOriginal:
		return "original"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// OutputFile is one file the transaction will write. Content uses LF newlines.
type OutputFile struct {
	Path     string
	Role     FileRole
	Category Category
	Content  string
}

var (
	exportableDeclRe = regexp.MustCompile(`^(?:declare\s+)?(?:async\s+)?(?:abstract\s+)?(?:function|class|interface|type|enum|const|let|var)\b`)
	defaultAliasRe   = regexp.MustCompile(`\bas\s+default\b`)
)

// Synthesize renders the category files, the aggregator and the forwarding original.
func Synthesize(plan *ModulePlan, n Naming) []OutputFile {
	present := plan.Present()
	if len(present) == 0 {
		return nil
	}

	effectsTo := present[0]
	if plan.Has(CategoryMain) {
		effectsTo = CategoryMain
	}

	var files []OutputFile
	for _, c := range present {
		files = append(files, OutputFile{
			Path:     n.CategoryPath(c),
			Role:     RoleCategory,
			Category: c,
			Content:  renderCategory(plan, n, c, c == effectsTo),
		})
	}
	files = append(files,
		OutputFile{Path: n.AggregatorPath(), Role: RoleAggregator, Content: renderAggregator(plan, n)},
		OutputFile{Path: n.OriginalPath(), Role: RoleOriginal, Content: renderForwarder(plan, n)},
	)
	return files
}

func renderCategory(plan *ModulePlan, n Naming, c Category, sideEffects bool) string {
	entry := plan.Entries[c]
	var head []string
	head = append(head, plan.Directives...)

	for _, imp := range entry.Imports {
		head = append(head, rebaseRaw(imp.Raw, imp.Source, n))
	}
	head = append(head, siblingImports(plan, n, c)...)
	if sideEffects {
		for _, imp := range plan.SideEffects {
			head = append(head, rebaseRaw(imp.Raw, imp.Source, n))
		}
	}

	own := make(map[string]bool, len(entry.Declared))
	for _, name := range entry.Declared {
		own[name] = true
	}
	body := make([]string, 0, len(entry.Blocks)+1)
	for _, b := range entry.Blocks {
		switch {
		case c == CategoryMain:
			body = append(body, b.Text)
		case b.Kind == KindStatement:
			if text, ok := pruneExportList(b, own); ok {
				body = append(body, text)
			}
		default:
			body = append(body, ensureExported(b))
		}
	}
	if c == CategoryMain && !hasDefaultExport(entry.Blocks) {
		if name := firstName(entry); name != "" {
			body = append(body, fmt.Sprintf("export default %s;", name))
		}
	}

	var sb strings.Builder
	if len(head) > 0 {
		sb.WriteString(strings.Join(head, "\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString(strings.Join(body, "\n\n"))
	sb.WriteString("\n")
	return sb.String()
}

// siblingImports lists the imports c needs from the other category files.
func siblingImports(plan *ModulePlan, n Naming, c Category) []string {
	entry := plan.Entries[c]
	masked := MaskText(joinBlocks(entry.Blocks))
	own := make(map[string]bool, len(entry.Declared))
	for _, name := range entry.Declared {
		own[name] = true
	}

	var out []string
	for _, d := range plan.Present() {
		if d == c {
			continue
		}
		var used []string
		if d != CategoryMain {
			seen := make(map[string]bool)
			for _, name := range plan.Entries[d].Declared {
				if !own[name] && !seen[name] && UsesIdent(masked, name) {
					used = append(used, name)
					seen[name] = true
				}
			}
		}
		spec := quote(plan.Quote, n.CategorySpecifier(d))
		switch {
		case len(used) > 0:
			out = append(out, fmt.Sprintf("import { %s } from %s;", strings.Join(used, ", "), spec))
		case c == CategoryMain:
			out = append(out, fmt.Sprintf("import %s;", spec))
		}
	}
	return out
}

func renderAggregator(plan *ModulePlan, n Naming) string {
	var lines []string
	for _, c := range plan.Present() {
		lines = append(lines, fmt.Sprintf("export * from %s;", quote(plan.Quote, n.CategorySpecifier(c))))
	}
	if plan.Has(CategoryMain) {
		ident := n.Ident()
		lines = append(lines,
			"",
			fmt.Sprintf("import %s from %s;", ident, quote(plan.Quote, n.CategorySpecifier(CategoryMain))),
			fmt.Sprintf("export { %s };", ident),
			fmt.Sprintf("export default %s;", ident),
		)
	}
	if len(plan.Reexports) > 0 {
		lines = append(lines, "")
		for _, r := range plan.Reexports {
			lines = append(lines, rebaseRaw(r.Raw, r.Source, n))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

func renderForwarder(plan *ModulePlan, n Naming) string {
	lines := append([]string(nil), plan.Directives...)
	spec := quote(plan.Quote, n.AggregatorSpecifier())
	lines = append(lines, fmt.Sprintf("export * from %s;", spec))
	if plan.Has(CategoryMain) {
		lines = append(lines, fmt.Sprintf("export { default } from %s;", spec))
	}
	return strings.Join(lines, "\n") + "\n"
}

// ensureExported adds an export modifier to the declaration line of b.
func ensureExported(b Block) string {
	lines := strings.Split(b.Text, "\n")
	for i := b.Lead; i < len(lines); i++ {
		trimmed := strings.TrimLeft(lines[i], " \t")
		if trimmed == "" || strings.HasPrefix(trimmed, "@") {
			continue
		}
		if exportableDeclRe.MatchString(trimmed) {
			indent := lines[i][:len(lines[i])-len(trimmed)]
			lines[i] = indent + "export " + trimmed
		}
		break
	}
	return strings.Join(lines, "\n")
}

// pruneExportList drops list entries that re-export a declaration of the same
// file under its own name, since ensureExported already exports it there.
// It reports false when nothing is left.
func pruneExportList(b Block, own map[string]bool) (string, bool) {
	specs, typeOnly, ok := parseExportList(b.Body())
	if !ok {
		return b.Text, true
	}
	var keep []string
	for _, s := range specs {
		if s.Local == s.Exported && own[s.Local] {
			continue
		}
		spec := s.Local
		if s.Exported != s.Local {
			spec += " as " + s.Exported
		}
		if s.Type {
			spec = "type " + spec
		}
		keep = append(keep, spec)
	}
	if len(keep) == len(specs) {
		return b.Text, true
	}
	if len(keep) == 0 {
		return "", false
	}
	lead := b.Text[:len(b.Text)-len(b.Body())]
	kw := "export"
	if typeOnly {
		kw = "export type"
	}
	return fmt.Sprintf("%s%s { %s };", lead, kw, strings.Join(keep, ", ")), true
}

func hasDefaultExport(blocks []Block) bool {
	for _, b := range blocks {
		if exportDefaultRe.MatchString(b.Head()) {
			return true
		}
		if strings.HasPrefix(b.Head(), "export") && defaultAliasRe.MatchString(MaskText(b.Body())) {
			return true
		}
	}
	return false
}

func firstName(entry *PlanEntry) string {
	for _, b := range entry.Blocks {
		if b.Name != "" {
			return b.Name
		}
	}
	return ""
}

func rebaseRaw(raw, source string, n Naming) string {
	rebased := n.Rebase(source)
	if rebased == source {
		return raw
	}
	for _, q := range []string{"'", `"`} {
		if strings.Contains(raw, q+source+q) {
			return strings.Replace(raw, q+source+q, q+rebased+q, 1)
		}
	}
	return raw
}

func quote(q, s string) string { return q + s + q }
