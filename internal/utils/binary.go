package utils

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// sniffLength defines the maximum number of bytes read when detecting binary content.
const sniffLength = 8000

// textFileExtensions lists extensions that are always treated as text when rewriting identifiers.
var textFileExtensions = map[string]struct{}{
	".php":  {},
	".xml":  {},
	".js":   {},
	".ts":   {},
	".twig": {},
	".json": {},
	".yml":  {},
	".yaml": {},
	".md":   {},
	".scss": {},
	".css":  {},
	".html": {},
	".txt":  {},
	".neon": {},
	".dist": {},
}

// binaryFileExtensions lists extensions that are never rewritten regardless of content.
var binaryFileExtensions = map[string]struct{}{
	".png":   {},
	".jpg":   {},
	".jpeg":  {},
	".gif":   {},
	".ico":   {},
	".webp":  {},
	".woff":  {},
	".woff2": {},
	".ttf":   {},
	".eot":   {},
	".zip":   {},
	".pdf":   {},
	".gz":    {},
}

// FileClass says how a file is treated by identifier substitution.
type FileClass int

const (
	// TextFile content may be rewritten.
	TextFile FileClass = iota
	// KnownBinaryFile has an extension that is never rewritten.
	KnownBinaryFile
	// SniffedBinaryFile looked binary when its leading bytes were inspected.
	SniffedBinaryFile
)

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	return bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data)
}

// trimPartialRune drops an incomplete multibyte sequence cut off at the end of a
// truncated read.
func trimPartialRune(data []byte) []byte {
	for trimmed := 0; trimmed < utf8.UTFMax-1 && len(data) > 0; trimmed++ {
		lastStart := len(data) - 1
		for lastStart > 0 && !utf8.RuneStart(data[lastStart]) {
			lastStart--
		}
		if utf8.FullRune(data[lastStart:]) {
			return data
		}
		data = data[:lastStart]
	}
	return data
}

func sniff(path string) ([]byte, bool, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return nil, false, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && readError != io.EOF && readError != io.ErrUnexpectedEOF {
		return nil, false, readError
	}
	return buffer[:bytesRead], bytesRead == sniffLength, nil
}

// IsFileBinary reads up to sniffLength bytes from the file at path and determines
// if the content appears to be binary. A rune split by the read limit does not count.
func IsFileBinary(path string) bool {
	data, truncated, sniffError := sniff(path)
	if sniffError != nil {
		return false
	}
	if truncated {
		data = trimPartialRune(data)
	}
	return IsBinary(data)
}

// ClassifyFile decides whether the file at path receives literal identifier
// substitution. Files with a known text extension only count as binary when they
// contain a NUL byte; known binary extensions are never rewritten; anything else is
// decided by sniffing its content.
func ClassifyFile(path string) FileClass {
	extension := strings.ToLower(filepath.Ext(path))
	if _, isText := textFileExtensions[extension]; isText {
		data, _, sniffError := sniff(path)
		if sniffError == nil && bytes.IndexByte(data, 0) >= 0 {
			return SniffedBinaryFile
		}
		return TextFile
	}
	if _, isBinary := binaryFileExtensions[extension]; isBinary {
		return KnownBinaryFile
	}
	if IsFileBinary(path) {
		return SniffedBinaryFile
	}
	return TextFile
}

// AcceptRewritable reports whether the file at path is rewritten. A file skipped
// because of its content, rather than its extension, is logged as a warning since
// identifiers inside it keep their old form.
func AcceptRewritable(path string, logger *zap.Logger) bool {
	switch ClassifyFile(path) {
	case TextFile:
		return true
	case SniffedBinaryFile:
		logger.Warn("skipping identifier substitution in binary content", zap.String("path", path))
	}
	return false
}
