package fsplit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockShape struct {
	Start, End int
	Kind       Kind
	Name       string
}

func shapes(blocks []Block) []blockShape {
	out := make([]blockShape, len(blocks))
	for i, b := range blocks {
		out[i] = blockShape{b.Start, b.End, b.Kind, b.Name}
	}
	return out
}

func TestScanBasicDeclarations(t *testing.T) {
	buf := mustBuffer(t, "page.tsx", source(`
		import { Foo, Bar } from './x';
		import React from 'react';

		interface Props {
		  name: Foo;
		}

		const MAX = 10;

		export default function Main({ name }: Props) {
		  return <Bar max={MAX}>{name}</Bar>;
		}
	`))

	blocks, warnings := Scan(buf, CountLiteral)
	assert.Empty(t, warnings)
	want := []blockShape{
		{0, 1, KindImport, ""},
		{1, 2, KindImport, ""},
		{3, 6, KindTypeDef, "Props"},
		{7, 8, KindConstant, "MAX"},
		{9, 12, KindFunction, "Main"},
	}
	if diff := cmp.Diff(want, shapes(blocks)); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
}

func TestScanMultiLineConstructs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []blockShape
	}{
		{
			name: "multi-line import",
			src: source(`
				import {
				  a,
				  b,
				} from 'mod';
				const x = 1;
			`),
			want: []blockShape{{0, 4, KindImport, ""}, {4, 5, KindConstant, "x"}},
		},
		{
			name: "from on its own line",
			src: source(`
				import Thing
				  from 'thing'
				const y = 2
			`),
			want: []blockShape{{0, 2, KindImport, ""}, {2, 3, KindConstant, "y"}},
		},
		{
			name: "arrow function without braces",
			src: source(`
				const double = (n: number) =>
				  n * 2;
				const z = 3;
			`),
			want: []blockShape{{0, 2, KindFunction, "double"}, {2, 3, KindConstant, "z"}},
		},
		{
			name: "method chain continuation",
			src: source(`
				const items = list
				  .filter(Boolean)
				  .map(String)
				type T = string
			`),
			want: []blockShape{{0, 3, KindConstant, "items"}, {3, 4, KindTypeDef, "T"}},
		},
		{
			name: "object literal",
			src: source(`
				export const config = {
				  a: { b: [1, 2] },
				};
			`),
			want: []blockShape{{0, 3, KindConstant, "config"}},
		},
		{
			name: "union type across lines",
			src: source(`
				type Mode =
				  | 'a'
				  | 'b';
			`),
			want: []blockShape{{0, 3, KindTypeDef, "Mode"}},
		},
		{
			name: "class",
			src: source(`
				class Store {
				  items = [];
				}
			`),
			want: []blockShape{{0, 3, KindFunction, "Store"}},
		},
		{
			name: "braces inside strings",
			src: source(`
				const open = '{';
				const close = "}";
			`),
			want: []blockShape{{0, 1, KindConstant, "open"}, {1, 2, KindConstant, "close"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, warnings := Scan(mustBuffer(t, "a.ts", tt.src), CountLiteral)
			assert.Empty(t, warnings)
			if diff := cmp.Diff(tt.want, shapes(blocks)); diff != "" {
				t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanAttachesCommentsAndDecorators(t *testing.T) {
	buf := mustBuffer(t, "a.ts", source(`
		// detached

		/** Docs for helper. */
		function helper() {
		  return 1;
		}

		@Component({
		  selector: 'x',
		})
		export class Widget {}
	`))

	blocks, warnings := Scan(buf, CountLiteral)
	require.Empty(t, warnings)
	require.Len(t, blocks, 2)

	assert.Equal(t, 2, blocks[0].Start)
	assert.Equal(t, 1, blocks[0].Lead)
	assert.Equal(t, "helper", blocks[0].Name)
	assert.Equal(t, "function helper() {", blocks[0].Head())

	assert.Equal(t, 7, blocks[1].Start)
	assert.Equal(t, 11, blocks[1].End)
	assert.Equal(t, 3, blocks[1].Lead)
	assert.Equal(t, KindFunction, blocks[1].Kind)
	assert.Equal(t, "Widget", blocks[1].Name)
}

func TestScanWarnings(t *testing.T) {
	t.Run("unterminated", func(t *testing.T) {
		buf := mustBuffer(t, "a.ts", source(`
			const ok = 1;
			function broken() {
			  if (x) {
			}
		`))
		blocks, warnings := Scan(buf, CountLiteral)
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnUnterminated, warnings[0].Kind)
		assert.Equal(t, 1, warnings[0].Line)

		last := blocks[len(blocks)-1]
		assert.True(t, last.Unterminated)
		assert.Equal(t, len(buf.Lines), last.End)
	})

	t.Run("unbalanced", func(t *testing.T) {
		buf := mustBuffer(t, "a.ts", source(`
			}
			const ok = 1;
		`))
		blocks, warnings := Scan(buf, CountLiteral)
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnUnbalanced, warnings[0].Kind)
		assert.Equal(t, []blockShape{{0, 1, KindStatement, ""}, {1, 2, KindConstant, "ok"}}, shapes(blocks))
	})

	t.Run("raw counting trips on string braces", func(t *testing.T) {
		buf := mustBuffer(t, "a.ts", "const s = '{';\nconst t = 1;")
		_, warnings := Scan(buf, CountRaw)
		require.Len(t, warnings, 1)
		assert.Equal(t, WarnUnterminated, warnings[0].Kind)
	})
}

// Every code line belongs to exactly one block.
func TestScanPartitionsCodeLines(t *testing.T) {
	inputs := []string{
		source(`
			'use client';
			import a from 'a';
			import 'side-effect';

			export type Id = string;
			export enum Color { Red, Green }

			/* comment */
			const list = [
			  1,
			  2,
			];
			let counter = 0;
			counter++;

			export const useThing = () => {
			  return useMemo(() => ({ a }), []);
			};

			export function Card({ title }: { title: string }) {
			  return (
			    <div className="card">{title}</div>
			  );
			}

			export default Card;
		`),
		source(`
			const a = 1
			const b = a
			  + 2
			export { a, b }
		`),
	}
	for i, in := range inputs {
		buf := mustBuffer(t, "a.tsx", in)
		blocks, warnings := Scan(buf, CountLiteral)
		require.Empty(t, warnings, "input %d", i)

		owner := make([]int, len(buf.Lines))
		for j := range owner {
			owner[j] = -1
		}
		for bi, b := range blocks {
			require.Less(t, b.Start, b.End)
			for line := b.Start; line < b.End; line++ {
				require.Equal(t, -1, owner[line], "input %d: line %d in two blocks", i, line)
				owner[line] = bi
			}
		}
		infos := LexLines(buf.Lines, CountLiteral)
		for line, info := range infos {
			if info.Code {
				assert.NotEqual(t, -1, owner[line], "input %d: code line %d not covered", i, line)
			}
		}
	}
}

func TestScanEmptyBuffer(t *testing.T) {
	blocks, warnings := Scan(mustBuffer(t, "a.ts", ""), CountLiteral)
	assert.Empty(t, blocks)
	assert.Empty(t, warnings)
}

func TestIsFunctionValue(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"const f = () => 1", true},
		{"export const f = async (a, b) => {", true},
		{"const f = function () {", true},
		{"const C = memo(Inner)", true},
		{"const C = React.forwardRef((p, ref) => null)", true},
		{"const f = <T,>(x: T) => x", true},
		{"const f = x => x", true},
		{"const f = (a: number): number => a", true},
		{"const n = 5", false},
		{"const o = { a: 1 }", false},
		{"const v = compute(a)", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsFunctionValue(tt.src), tt.src)
	}
}

func TestBlockBodyAndHead(t *testing.T) {
	b := Block{Lead: 2, Text: "// a\n// b\nconst x = {\n  y: 1,\n};"}
	assert.Equal(t, "const x = {\n  y: 1,\n};", b.Body())
	assert.Equal(t, "const x = {", b.Head())
}
