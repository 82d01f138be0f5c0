package fsplit

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileShape struct {
	Path    string
	Role    FileRole
	Content string
}

func synthFor(t *testing.T, path, src string, layout Layout) []fileShape {
	t.Helper()
	rules := mustRules(t, func(c *Config) { c.Layout = layout })
	blocks, warnings := Scan(mustBuffer(t, path, src), rules.Counting)
	require.Empty(t, warnings)
	plan := BuildPlan(blocks, &FileContext{DefaultExport: DefaultExportName(blocks), Rules: rules})

	var out []fileShape
	for _, f := range Synthesize(plan, NewNaming(path, rules.Layout)) {
		out = append(out, fileShape{f.Path, f.Role, f.Content})
	}
	return out
}

func TestSynthesizeTypesConstantsMain(t *testing.T) {
	path := filepath.FromSlash("/p/page.tsx")
	got := synthFor(t, path, source(`
		import { Foo, Bar } from './x';

		interface Props {
		  name: Foo;
		}

		const MAX = 10;

		export default function Main({ name }: Props) {
		  return <Bar max={MAX}>{name}</Bar>;
		}
	`), LayoutFlat)

	want := []fileShape{
		{
			Path: filepath.FromSlash("/p/page-types.tsx"),
			Role: RoleCategory,
			Content: source(`
				import { Foo } from './x';

				export interface Props {
				  name: Foo;
				}
			`),
		},
		{
			Path:    filepath.FromSlash("/p/page-constants.tsx"),
			Role:    RoleCategory,
			Content: "export const MAX = 10;\n",
		},
		{
			Path: filepath.FromSlash("/p/page-main.tsx"),
			Role: RoleCategory,
			Content: source(`
				import { Bar } from './x';
				import { Props } from './page-types';
				import { MAX } from './page-constants';

				export default function Main({ name }: Props) {
				  return <Bar max={MAX}>{name}</Bar>;
				}
			`),
		},
		{
			Path: filepath.FromSlash("/p/page-index.tsx"),
			Role: RoleAggregator,
			Content: source(`
				export * from './page-types';
				export * from './page-constants';
				export * from './page-main';

				import Page from './page-main';
				export { Page };
				export default Page;
			`),
		},
		{
			Path: path,
			Role: RoleOriginal,
			Content: source(`
				export * from './page-index';
				export { default } from './page-index';
			`),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Synthesize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeDirectoryLayout(t *testing.T) {
	path := filepath.FromSlash("/p/widget.ts")
	got := synthFor(t, path, source(`
		'use client';
		import './styles.css';
		import { helper } from '../lib';
		export { shared } from './shared';

		export const LIMIT = 5;

		function clamp(n) {
		  return helper(Math.min(n, LIMIT));
		}
	`), LayoutDirectory)

	want := []fileShape{
		{
			Path: filepath.FromSlash("/p/widget/widget-constants.ts"),
			Role: RoleCategory,
			Content: source(`
				'use client';
				import '../styles.css';

				export const LIMIT = 5;
			`),
		},
		{
			Path: filepath.FromSlash("/p/widget/widget-utils.ts"),
			Role: RoleCategory,
			Content: source(`
				'use client';
				import { helper } from '../../lib';
				import { LIMIT } from './widget-constants';

				export function clamp(n) {
				  return helper(Math.min(n, LIMIT));
				}
			`),
		},
		{
			Path: filepath.FromSlash("/p/widget/index.ts"),
			Role: RoleAggregator,
			Content: source(`
				export * from './widget-constants';
				export * from './widget-utils';

				export { shared } from '../shared';
			`),
		},
		{
			Path: path,
			Role: RoleOriginal,
			Content: source(`
				'use client';
				export * from './widget/index';
			`),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Synthesize() mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeMainWithoutDefaultExport(t *testing.T) {
	got := synthFor(t, "dash.tsx", source(`
		type Row = { id: string };

		export const DashboardPage = () => <div />;
	`), LayoutFlat)

	require.Len(t, got, 4)
	assert.Equal(t, source(`
		import './dash-types';

		export const DashboardPage = () => <div />;

		export default DashboardPage;
	`), got[1].Content)
}

func TestSynthesizeExportListFollowsDeclaration(t *testing.T) {
	got := synthFor(t, "card.tsx", source(`
		const LIMIT = 3;

		function Card() {
		  return <div>{LIMIT}</div>;
		}

		export { Card as default };
	`), LayoutFlat)

	paths := make([]string, 0, len(got))
	for _, f := range got {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"card-constants.tsx", "card-main.tsx", "card-index.tsx", "card.tsx"}, paths)
	assert.Equal(t, source(`
		import { LIMIT } from './card-constants';

		function Card() {
		  return <div>{LIMIT}</div>;
		}

		export { Card as default };
	`), got[1].Content)
}

func TestSynthesizeNamedExportListOfMain(t *testing.T) {
	got := synthFor(t, "dash.tsx", source(`
		const LIMIT = 3;

		function DashboardPage() {
		  return <div>{LIMIT}</div>;
		}

		export { DashboardPage };
	`), LayoutFlat)

	require.Len(t, got, 4)
	assert.Equal(t, "dash-main.tsx", got[1].Path)
	assert.Equal(t, source(`
		import { LIMIT } from './dash-constants';

		function DashboardPage() {
		  return <div>{LIMIT}</div>;
		}

		export { DashboardPage };

		export default DashboardPage;
	`), got[1].Content)
}

func TestSynthesizeExportListDropsDuplicateNames(t *testing.T) {
	got := synthFor(t, "limits.ts", source(`
		const A = 1;

		const B = 2;

		export { A, B as Beta };
	`), LayoutFlat)

	require.Len(t, got, 3)
	assert.Equal(t, source(`
		export const A = 1;

		export const B = 2;

		export { B as Beta };
	`), got[0].Content)
}

func TestSynthesizeNoBlocks(t *testing.T) {
	assert.Empty(t, synthFor(t, "a.ts", "import 'x';", LayoutFlat))
}

func TestEnsureExported(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  string
	}{
		{"const", Block{Text: "const a = 1;"}, "export const a = 1;"},
		{"already exported", Block{Text: "export type A = string;"}, "export type A = string;"},
		{"with doc comment", Block{Lead: 1, Text: "// doc\nfunction f() {}"}, "// doc\nexport function f() {}"},
		{"decorated class", Block{Lead: 1, Text: "@Injectable()\nclass Service {}"}, "@Injectable()\nexport class Service {}"},
		{"statement", Block{Text: "run();"}, "run();"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ensureExported(tt.block))
		})
	}
}

func TestFileRoleString(t *testing.T) {
	assert.Equal(t, "aggregator", RoleAggregator.String())
	assert.Equal(t, "role(9)", FileRole(9).String())
}
