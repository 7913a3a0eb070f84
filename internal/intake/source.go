package intake

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extensionTypes mirrors the picker's accept list (.pdf,.doc,.docx,.txt).
var extensionTypes = map[string]string{
	".pdf":  MimePDF,
	".txt":  MimeText,
	".doc":  MimeDoc,
	".docx": MimeDocx,
}

// Sniff results too generic to trust over the file extension.
var inconclusiveTypes = map[string]bool{
	"application/octet-stream":  true,
	"application/zip":           true,
	"application/x-ole-storage": true,
}

// Describe builds the candidate representation of the file at path. Drop and
// picker selections both end here, so they differ only in Origin.
func Describe(path string, origin Origin) (CandidateFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return CandidateFile{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return CandidateFile{}, fmt.Errorf("failed to get file info: %w", err)
	}
	if !stat.Mode().IsRegular() {
		return CandidateFile{}, fmt.Errorf("%s: %w", abs, ErrNotRegular)
	}

	mimeType, err := detectMimeType(abs)
	if err != nil {
		return CandidateFile{}, err
	}

	return CandidateFile{
		Name:      stat.Name(),
		SizeBytes: stat.Size(),
		MimeType:  mimeType,
		Origin:    origin,
		Path:      abs,
	}, nil
}

// detectMimeType sniffs content first and falls back to the extension table
// when the sniffer cannot tell.
func detectMimeType(path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	sniffed := MediaType(mtype.String())
	if !inconclusiveTypes[sniffed] {
		return sniffed, nil
	}
	if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return byExt, nil
	}
	return sniffed, nil
}

// ParseDropped extracts a path from text a terminal inserts on drag-and-drop:
// quoted paths, backslash-escaped paths and file:// URLs. When several files
// are dropped at once only the first one is taken.
func ParseDropped(text string) (string, error) {
	s := firstToken(strings.TrimSpace(text))
	if strings.HasPrefix(s, "file://") {
		u, err := url.Parse(s)
		if err != nil {
			return "", fmt.Errorf("invalid file URL: %w", err)
		}
		s = u.Path
	}

	if s == "" {
		return "", ErrEmptyDrop
	}
	return s, nil
}

// firstToken returns the first shell word of s with quotes and backslash
// escapes removed.
func firstToken(s string) string {
	var b strings.Builder
	var quote rune
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				b.WriteRune(r)
			}
		case r == '\\':
			escaped = true
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return b.String()
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
