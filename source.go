package fsplit

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
)

const utf8BOM = "\uFEFF"

// NewSourceBuffer decodes data as UTF-8, remembering its BOM and newline style.
func NewSourceBuffer(path string, data []byte) (*SourceBuffer, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotUTF8)
	}
	text := string(data)
	buf := &SourceBuffer{Path: path, Encoding: "utf-8"}
	if strings.HasPrefix(text, utf8BOM) {
		buf.BOM = true
		text = strings.TrimPrefix(text, utf8BOM)
	}
	if strings.Contains(text, "\r\n") {
		buf.CRLF = true
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	text = strings.TrimSuffix(text, "\n")
	if text != "" {
		buf.Lines = strings.Split(text, "\n")
	}
	return buf, nil
}

// LoadSource reads path through fsys.
func LoadSource(fsys FileSystem, path string) (*SourceBuffer, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return NewSourceBuffer(path, data)
}

// Encode converts LF text to the buffer's newline style and BOM.
func (b *SourceBuffer) Encode(text string) []byte {
	if b.CRLF {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	if b.BOM {
		text = utf8BOM + text
	}
	return []byte(text)
}

// SourceProvider reads analyze-mode input from stdin or the clipboard.
type SourceProvider struct {
	stdin *os.File
}

func NewSourceProvider() *SourceProvider {
	return &SourceProvider{stdin: os.Stdin}
}

func (sp *SourceProvider) GetContent() (string, error) {
	stat, err := sp.stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		c, err := io.ReadAll(sp.stdin)
		if err != nil {
			return "", err
		}
		return string(c), nil
	}

	c, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return strings.TrimSpace(c), nil
}
