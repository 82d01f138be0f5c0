package fsplit

import (
	"fmt"
	"io"

	"github.com/ddddddO/gtree"
)

// PrintPlan renders plan as a tree: target files, then the blocks each receives.
func PrintPlan(w io.Writer, plan *SplitPlan, pr *PathResolver) error {
	rel := func(p string) string {
		if pr == nil {
			return p
		}
		return pr.Relative(p)
	}

	root := gtree.NewRoot(fmt.Sprintf("%s (%d lines)", rel(plan.Path), len(plan.Buffer.Lines)))
	if len(plan.Files) == 0 {
		root.Add("nothing to split")
	}
	for _, f := range plan.Files {
		switch f.Role {
		case RoleCategory:
			entry := plan.Module.Entries[f.Category]
			node := root.Add(fmt.Sprintf("%s [%s]", rel(f.Path), f.Category))
			for _, imp := range entry.Imports {
				node.Add("import " + imp.Source)
			}
			for _, b := range entry.Blocks {
				node.Add(blockLabel(b))
			}
		case RoleAggregator:
			root.Add(fmt.Sprintf("%s [index]", rel(f.Path)))
		case RoleOriginal:
			root.Add(fmt.Sprintf("%s [forwarding]", rel(f.Path)))
		}
	}
	if len(plan.Warnings) > 0 {
		node := root.Add("warnings")
		for _, warn := range plan.Warnings {
			node.Add(warn.String())
		}
	}
	return gtree.OutputFromRoot(w, root)
}

func blockLabel(b Block) string {
	name := b.Name
	if name == "" {
		name = "<anonymous>"
	}
	label := fmt.Sprintf("%s %s (%d-%d)", b.Kind, name, b.Start+1, b.End)
	if b.Unterminated {
		label += " unterminated"
	}
	return label
}
