package fsplit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceBuffer(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantLines []string
		wantCRLF  bool
		wantBOM   bool
	}{
		{"lf", "a\nb\n", []string{"a", "b"}, false, false},
		{"no trailing newline", "a\nb", []string{"a", "b"}, false, false},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}, true, false},
		{"bom", utf8BOM + "a\n", []string{"a"}, false, true},
		{"empty", "", nil, false, false},
		{"keeps inner blank lines", "a\n\nb\n", []string{"a", "", "b"}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewSourceBuffer("a.ts", []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantLines, buf.Lines)
			assert.Equal(t, tt.wantCRLF, buf.CRLF)
			assert.Equal(t, tt.wantBOM, buf.BOM)
			assert.Equal(t, "utf-8", buf.Encoding)
		})
	}
}

func TestNewSourceBufferRejectsInvalidUTF8(t *testing.T) {
	_, err := NewSourceBuffer("bin.ts", []byte{0xff, 0xfe, 'a'})
	assert.ErrorIs(t, err, ErrNotUTF8)
}

func TestSourceBufferEncode(t *testing.T) {
	buf := mustBuffer(t, "a.ts", utf8BOM+"x\r\ny\r\n")
	assert.Equal(t, []byte(utf8BOM+"p\r\nq\r\n"), buf.Encode("p\nq\n"))
	assert.Equal(t, "\r\n", buf.Newline())
	assert.Equal(t, "x\ny", buf.Text())
	assert.Equal(t, "y", buf.Slice(1, 2))
}
