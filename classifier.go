package fsplit

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FileContext is the per-file state classification depends on.
type FileContext struct {
	DefaultExport string
	Rules         *Rules
}

var (
	exportDefaultRe     = regexp.MustCompile(`^export\s+default\b`)
	defaultDeclRe       = regexp.MustCompile(`^export\s+default\s+(?:async\s+)?(?:abstract\s+)?(?:function\s*\*?|class)\s*([A-Za-z_$][\w$]*)`)
	defaultBareRe       = regexp.MustCompile(`^export\s+default\s+([A-Za-z_$][\w$]*)\s*;?\s*$`)
	defaultWrappedRe    = regexp.MustCompile(`^export\s+default\s+(?:React\.)?(?:memo|forwardRef|observer|connect\([^)]*\))\s*\(\s*([A-Za-z_$][\w$]*)\s*\)`)
	defaultSpecifierRe  = regexp.MustCompile(`^export\s*\{[^}]*?\b([A-Za-z_$][\w$]*)\s+as\s+default\b`)
	exportFunctionRe    = regexp.MustCompile(`^export\s+(?:default\s+)?(?:async\s+)?function\b`)
	componentClassRe    = regexp.MustCompile(`\bextends\s+(?:React\.)?(?:Pure)?Component\b`)
	returnParenRe       = regexp.MustCompile(`\breturn\s*\(`)
	reservedDefaultName = map[string]bool{"function": true, "class": true, "async": true, "abstract": true, "extends": true}
)

// DefaultExportName finds the local name of the file's default export.
func DefaultExportName(blocks []Block) string {
	for _, b := range blocks {
		if b.Kind == KindImport {
			continue
		}
		line := collapse(b.Body())
		for _, re := range []*regexp.Regexp{defaultDeclRe, defaultWrappedRe, defaultBareRe, defaultSpecifierRe} {
			if m := re.FindStringSubmatch(line); m != nil && !reservedDefaultName[m[1]] {
				return m[1]
			}
		}
	}
	return ""
}

// Classify assigns b to a category. Imports have none and report false.
func Classify(b Block, fc *FileContext) (Category, bool) {
	switch b.Kind {
	case KindImport:
		return 0, false
	case KindTypeDef:
		return CategoryTypes, true
	case KindConstant:
		if !isRenderingFunction(b, fc) {
			return CategoryConstants, true
		}
		return classifyFunction(b, fc), true
	case KindFunction:
		return classifyFunction(b, fc), true
	case KindStatement:
		if exportDefaultRe.MatchString(b.Head()) {
			return CategoryMain, true
		}
		return CategoryOther, true
	}
	panic(fmt.Sprintf("fsplit: unknown block kind %d", int(b.Kind)))
}

func classifyFunction(b Block, fc *FileContext) Category {
	head := b.Head()
	if exportDefaultRe.MatchString(head) || (b.Name != "" && b.Name == fc.DefaultExport) {
		return CategoryMain
	}
	if !isComponent(b, head, fc) {
		return CategoryUtilities
	}
	if exportFunctionRe.MatchString(head) || hasRoleSuffix(b.Name, fc.Rules.RoleSuffixes) {
		return CategoryMain
	}
	return CategorySubComponents
}

func isComponent(b Block, head string, fc *FileContext) bool {
	if classDeclRe.MatchString(head) {
		return componentClassRe.MatchString(head)
	}
	if capitalized(b.Name) {
		return true
	}
	if fc.Rules.componentType != nil && fc.Rules.componentType.MatchString(head) {
		return true
	}
	return genericComponentRe.MatchString(head)
}

// isRenderingFunction reports whether a constant holds a function that returns markup.
func isRenderingFunction(b Block, fc *FileContext) bool {
	if !strings.Contains(b.Text, "=>") && !strings.Contains(b.Text, "function") {
		return false
	}
	body := b.Body()
	if i := strings.Index(body, "=>"); i >= 0 {
		body = body[i+2:]
	} else if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		return false
	}
	return returnParenRe.MatchString(body) || fc.Rules.markup.MatchString(body)
}

func hasRoleSuffix(name string, suffixes []string) bool {
	if name == "" {
		return false
	}
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

func capitalized(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
