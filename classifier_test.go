package fsplit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanOne(t *testing.T, src string) Block {
	t.Helper()
	blocks, warnings := Scan(mustBuffer(t, "a.tsx", src), CountLiteral)
	require.Empty(t, warnings)
	require.Len(t, blocks, 1)
	return blocks[0]
}

func TestClassify(t *testing.T) {
	rules := mustRules(t, nil)
	tests := []struct {
		name          string
		src           string
		defaultExport string
		want          Category
	}{
		{"interface", "interface Props {\n  a: string;\n}", "", CategoryTypes},
		{"type alias", "export type Id = string;", "", CategoryTypes},
		{"enum", "enum Color { Red }", "", CategoryTypes},
		{"plain constant", "const LIMIT = 10;", "", CategoryConstants},
		{"object constant", "export const theme = {\n  color: 'red',\n};", "", CategoryConstants},
		{"helper function", "function formatDate(d: Date) {\n  return d.toISOString();\n}", "", CategoryUtilities},
		{"arrow helper", "export const sum = (a: number, b: number) => a + b;", "", CategoryUtilities},
		{"plain class", "class Store {\n  items = [];\n}", "", CategoryUtilities},
		{"sub component", "const Row = ({ a }) => (\n  <li>{a}</li>\n);", "", CategorySubComponents},
		{"typed component", "const renderer: FC = () => null;", "", CategorySubComponents},
		{"class component", "class Panel extends React.Component {\n  render() { return null; }\n}", "", CategorySubComponents},
		{"role suffix", "const DashboardPage = () => {\n  return <div />;\n};", "", CategoryMain},
		{"exported function component", "export function Header() {\n  return <header />;\n}", "", CategoryMain},
		{"default export declaration", "export default function Main() {\n  return null;\n}", "", CategoryMain},
		{"named default export", "function Card() {\n  return <div />;\n}", "Card", CategoryMain},
		{"bare default export", "export default Card;", "", CategoryMain},
		{"top level statement", "registerPlugin(plugin);", "", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := scanOne(t, tt.src)
			fc := &FileContext{DefaultExport: tt.defaultExport, Rules: rules}
			got, ok := Classify(b, fc)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)

			again, _ := Classify(b, fc)
			assert.Equal(t, got, again)
		})
	}
}

func TestClassifyImportHasNoCategory(t *testing.T) {
	b := scanOne(t, "import x from 'x';")
	_, ok := Classify(b, &FileContext{Rules: mustRules(t, nil)})
	assert.False(t, ok)
}

func TestClassifyCustomRoleSuffix(t *testing.T) {
	rules := mustRules(t, func(c *Config) { c.Patterns.RoleSuffixes = []string{"Widget"} })
	b := scanOne(t, "const ChartWidget = () => <svg />;")
	got, _ := Classify(b, &FileContext{Rules: rules})
	assert.Equal(t, CategoryMain, got)

	b = scanOne(t, "const SettingsPage = () => <div />;")
	got, _ = Classify(b, &FileContext{Rules: rules})
	assert.Equal(t, CategorySubComponents, got)
}

func TestDefaultExportName(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"function", "export default function Main() {}", "Main"},
		{"async function", "export default async function load() {}", "load"},
		{"class", "export default class Store {}", "Store"},
		{"bare", "const A = 1;\nexport default A;", "A"},
		{"memo wrapper", "export default memo(Card);", "Card"},
		{"react forwardRef", "export default React.forwardRef(Input);", "Input"},
		{"connect wrapper", "export default connect(mapState)(Board);", "Board"},
		{"specifier", "export { Card as default };", "Card"},
		{"anonymous function", "export default function () {}", ""},
		{"anonymous class", "export default class extends Base {}", ""},
		{"none", "export const a = 1;", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks, _ := Scan(mustBuffer(t, "a.tsx", tt.src), CountLiteral)
			assert.Equal(t, tt.want, DefaultExportName(blocks))
		})
	}
}
