package fsplit

import (
	"strings"
)

// Verify checks that every written file exists, has content and balanced braces.
func Verify(fsys FileSystem, paths []string, mode Counting) error {
	for _, path := range paths {
		ok, err := fsys.Exists(path)
		if err != nil {
			return &VerificationError{Path: path, Reason: err.Error()}
		}
		if !ok {
			return &VerificationError{Path: path, Reason: "file does not exist"}
		}

		data, err := fsys.ReadFile(path)
		if err != nil {
			return &VerificationError{Path: path, Reason: err.Error()}
		}
		text := strings.TrimPrefix(string(data), utf8BOM)
		if strings.TrimSpace(text) == "" {
			return &VerificationError{Path: path, Reason: "file is empty"}
		}
		if n := BraceBalance(strings.ReplaceAll(text, "\r\n", "\n"), mode); n != 0 {
			return &VerificationError{Path: path, Reason: braceReason(n)}
		}
	}
	return nil
}

func braceReason(n int) string {
	if n > 0 {
		return "unbalanced braces: missing closing brace"
	}
	return "unbalanced braces: extra closing brace"
}
