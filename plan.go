package fsplit

import (
	"regexp"
	"strings"
)

var (
	directiveRe  = regexp.MustCompile(`^(['"])use [\w -]+['"];?$`)
	exportListRe = regexp.MustCompile(`^export\s*(type\s+)?\{([^}]*)\}\s*;?$`)
)

// exportSpec is one entry of a local `export { a as b }` list.
type exportSpec struct {
	Local    string
	Exported string
	Type     bool
}

// parseExportList parses an export list without a from clause.
func parseExportList(body string) (specs []exportSpec, typeOnly, ok bool) {
	m := exportListRe.FindStringSubmatch(collapse(body))
	if m == nil {
		return nil, false, false
	}
	for _, part := range strings.Split(m[2], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var s exportSpec
		if rest, found := strings.CutPrefix(part, "type "); found {
			s.Type, part = true, strings.TrimSpace(rest)
		}
		local, exported, aliased := strings.Cut(part, " as ")
		s.Local, s.Exported = strings.TrimSpace(local), strings.TrimSpace(local)
		if aliased {
			s.Exported = strings.TrimSpace(exported)
		}
		if !identRe.MatchString(s.Local) {
			return nil, false, false
		}
		specs = append(specs, s)
	}
	return specs, m[1] != "", true
}

// exportListCategory places an export list next to the declarations it names.
// Lists naming the default export or a Main declaration belong to Main, since
// no other category file may import from Main.
func exportListCategory(specs []exportSpec, declaredIn map[string]Category) Category {
	target, found := CategoryOther, false
	for _, s := range specs {
		if s.Exported == "default" {
			return CategoryMain
		}
		c, ok := declaredIn[s.Local]
		if !ok {
			continue
		}
		if c == CategoryMain {
			return CategoryMain
		}
		if !found {
			target, found = c, true
		}
	}
	return target
}

// BuildPlan groups classified blocks by category and gives each group the imports it needs.
func BuildPlan(blocks []Block, fc *FileContext) *ModulePlan {
	plan := &ModulePlan{
		Entries:       make(map[Category]*PlanEntry),
		DefaultExport: fc.DefaultExport,
		Quote:         "'",
	}

	type placed struct {
		block Block
		cat   Category
		list  []exportSpec
	}
	var (
		imports    []ImportStatement
		order      []placed
		declaredIn = make(map[string]Category)
	)
	quoted := false
	for i, b := range blocks {
		if b.Kind == KindStatement && b.Lead == 0 && isPrologue(blocks[:i]) && directiveRe.MatchString(strings.TrimSpace(b.Text)) {
			plan.Directives = append(plan.Directives, strings.TrimSpace(b.Text))
			continue
		}
		if b.Kind == KindImport {
			stmt, ok := ParseImport(b.Body())
			if !ok {
				stmt = ImportStatement{Raw: strings.TrimRight(b.Body(), " \t\r\n"), SideEffect: true}
			}
			if m := fromQuoteRe.FindStringSubmatch(stmt.Raw); m != nil && !quoted {
				plan.Quote, quoted = m[1], true
			}
			switch {
			case stmt.Reexport:
				plan.Reexports = append(plan.Reexports, stmt)
			case stmt.SideEffect:
				plan.SideEffects = append(plan.SideEffects, stmt)
			default:
				imports = append(imports, stmt)
			}
			continue
		}

		cat, _ := Classify(b, fc)
		p := placed{block: b, cat: cat}
		if b.Kind == KindStatement {
			if specs, _, ok := parseExportList(b.Body()); ok && len(specs) > 0 {
				p.list = specs
			}
		}
		for _, name := range DeclaredNames(b) {
			if _, seen := declaredIn[name]; !seen {
				declaredIn[name] = cat
			}
		}
		order = append(order, p)
	}

	for _, p := range order {
		if p.list != nil {
			p.cat = exportListCategory(p.list, declaredIn)
		}
		entry, ok := plan.Entries[p.cat]
		if !ok {
			entry = &PlanEntry{}
			plan.Entries[p.cat] = entry
		}
		entry.Blocks = append(entry.Blocks, p.block)
		entry.Declared = append(entry.Declared, DeclaredNames(p.block)...)
	}

	for _, entry := range plan.Entries {
		entry.Imports = FilterImports(imports, joinBlocks(entry.Blocks))
	}
	return plan
}

// isPrologue reports whether every block before a candidate directive is a directive.
func isPrologue(before []Block) bool {
	for _, b := range before {
		if b.Kind != KindStatement || !directiveRe.MatchString(strings.TrimSpace(b.Text)) {
			return false
		}
	}
	return true
}

// BlockCount returns the number of non-import blocks in the plan.
func (p *ModulePlan) BlockCount() int {
	n := 0
	for _, e := range p.Entries {
		n += len(e.Blocks)
	}
	return n
}

func joinBlocks(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.Text
	}
	return strings.Join(parts, "\n\n")
}
