package fsplit

import (
	"regexp"
	"strings"
	"sync"
)

var (
	sideEffectImportRe = regexp.MustCompile(`^import\s*(['"])([^'"]+)['"]`)
	importClauseRe     = regexp.MustCompile(`^import\s+(type\s+)?(.+?)\s*from\s*(['"])([^'"]+)['"]`)
	importRequireRe    = regexp.MustCompile(`^import\s+(type\s+)?([A-Za-z_$][\w$]*)\s*=\s*require\(\s*(['"])([^'"]+)['"]\s*\)`)
	reexportClauseRe   = regexp.MustCompile(`^export\s+(type\s+)?(.+?)\s*from\s*(['"])([^'"]+)['"]`)
	namespaceRe        = regexp.MustCompile(`^\*\s*as\s+([A-Za-z_$][\w$]*)$`)
	identRe            = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	fromQuoteRe        = regexp.MustCompile(`\bfrom\s*(['"])`)
)

// ParseImport parses one import or re-export block.
func ParseImport(raw string) (ImportStatement, bool) {
	text := collapse(raw)
	stmt := ImportStatement{Raw: strings.TrimRight(raw, " \t\r\n")}

	if m := sideEffectImportRe.FindStringSubmatch(text); m != nil {
		stmt.SideEffect = true
		stmt.Source = m[2]
		return stmt, true
	}
	if m := importRequireRe.FindStringSubmatch(text); m != nil {
		stmt.TypeOnly = m[1] != ""
		stmt.Default = m[2]
		stmt.Source = m[4]
		return stmt, true
	}
	if m := reexportClauseRe.FindStringSubmatch(text); m != nil {
		stmt.Reexport = true
		stmt.TypeOnly = m[1] != ""
		stmt.Source = m[4]
		return stmt, true
	}
	m := importClauseRe.FindStringSubmatch(text)
	if m == nil {
		return stmt, false
	}
	stmt.TypeOnly = m[1] != ""
	stmt.Source = m[4]
	if !parseClause(strings.TrimSpace(m[2]), &stmt) {
		return stmt, false
	}
	return stmt, true
}

func parseClause(clause string, stmt *ImportStatement) bool {
	var named string
	if i := strings.IndexByte(clause, '{'); i >= 0 {
		j := strings.LastIndexByte(clause, '}')
		if j < i {
			return false
		}
		named = clause[i+1 : j]
		clause = clause[:i] + clause[j+1:]
	}

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case namespaceRe.MatchString(part):
			stmt.Namespace = namespaceRe.FindStringSubmatch(part)[1]
		case identRe.MatchString(part):
			stmt.Default = part
		default:
			return false
		}
	}

	for _, part := range strings.Split(named, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		var sp ImportSpecifier
		if fields[0] == "type" && len(fields) > 1 {
			sp.Type = true
			fields = fields[1:]
		}
		switch {
		case len(fields) == 1:
			sp.Imported, sp.Local = fields[0], fields[0]
		case len(fields) == 3 && fields[1] == "as":
			sp.Imported, sp.Local = fields[0], fields[2]
		default:
			return false
		}
		stmt.Specifiers = append(stmt.Specifiers, sp)
	}
	return true
}

// Render prints stmt, keeping its quote style and trailing semicolon.
func (s ImportStatement) Render() string {
	quote := "'"
	if m := fromQuoteRe.FindStringSubmatch(s.Raw); m != nil {
		quote = m[1]
	}

	var parts []string
	if s.Default != "" {
		parts = append(parts, s.Default)
	}
	if s.Namespace != "" {
		parts = append(parts, "* as "+s.Namespace)
	}
	if len(s.Specifiers) > 0 {
		specs := make([]string, 0, len(s.Specifiers))
		for _, sp := range s.Specifiers {
			spec := sp.Imported
			if sp.Local != sp.Imported {
				spec += " as " + sp.Local
			}
			if sp.Type {
				spec = "type " + spec
			}
			specs = append(specs, spec)
		}
		parts = append(parts, "{ "+strings.Join(specs, ", ")+" }")
	}

	var b strings.Builder
	b.WriteString("import ")
	if s.TypeOnly {
		b.WriteString("type ")
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(" from " + quote + s.Source + quote)
	if strings.HasSuffix(strings.TrimSpace(s.Raw), ";") {
		b.WriteString(";")
	}
	return b.String()
}

// narrow keeps only the bindings in used.
func (s ImportStatement) narrow(used map[string]bool) ImportStatement {
	out := s
	out.Specifiers = nil
	if !used[s.Default] {
		out.Default = ""
	}
	if !used[s.Namespace] {
		out.Namespace = ""
	}
	for _, sp := range s.Specifiers {
		if used[sp.Local] {
			out.Specifiers = append(out.Specifiers, sp)
		}
	}
	out.Raw = out.Render()
	return out
}

var identMatchers sync.Map

func identMatcher(name string) *regexp.Regexp {
	if re, ok := identMatchers.Load(name); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?:^|[^\w$.]|\.\.\.)` + regexp.QuoteMeta(name) + `(?:[^\w$]|$)`)
	identMatchers.Store(name, re)
	return re
}

// UsesIdent reports whether masked text references name as an identifier.
func UsesIdent(masked, name string) bool {
	return name != "" && identMatcher(name).MatchString(masked)
}

// FilterImports returns the imports groupText needs, narrowed to the names it uses.
func FilterImports(imports []ImportStatement, groupText string) []ImportStatement {
	masked := MaskText(groupText)
	var out []ImportStatement
	for _, imp := range imports {
		if imp.SideEffect || imp.Reexport {
			continue
		}
		names := imp.Names()
		used := make(map[string]bool, len(names))
		for _, n := range names {
			if UsesIdent(masked, n) {
				used[n] = true
			}
		}
		switch {
		case len(used) == 0:
		case len(used) == len(names):
			out = append(out, imp)
		default:
			out = append(out, imp.narrow(used))
		}
	}
	return out
}

var (
	destructureObjRe = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(?:const|let|var)\s*\{([^}]*)\}`)
	destructureArrRe = regexp.MustCompile(`^(?:export\s+)?(?:declare\s+)?(?:const|let|var)\s*\[([^\]]*)\]`)
)

// DeclaredNames returns the top-level bindings a block introduces.
func DeclaredNames(b Block) []string {
	switch b.Kind {
	case KindImport, KindStatement:
		return nil
	}
	head := collapse(b.Body())
	if m := destructureObjRe.FindStringSubmatch(head); m != nil {
		var names []string
		for _, part := range strings.Split(m[1], ",") {
			part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "..."))
			if i := strings.IndexByte(part, '='); i >= 0 {
				part = strings.TrimSpace(part[:i])
			}
			if i := strings.IndexByte(part, ':'); i >= 0 {
				part = strings.TrimSpace(part[i+1:])
			}
			if identRe.MatchString(part) {
				names = append(names, part)
			}
		}
		return names
	}
	if m := destructureArrRe.FindStringSubmatch(head); m != nil {
		var names []string
		for _, part := range strings.Split(m[1], ",") {
			part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "..."))
			if i := strings.IndexByte(part, '='); i >= 0 {
				part = strings.TrimSpace(part[:i])
			}
			if identRe.MatchString(part) {
				names = append(names, part)
			}
		}
		return names
	}
	if b.Name != "" {
		return []string{b.Name}
	}
	return nil
}
