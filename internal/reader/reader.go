// Package reader turns raw JSONLT file bytes into an ordered sequence of
// decoded lines: an optional leading header, followed by records and
// tombstones (spec §4.6).
package reader

import (
	"fmt"
	"strings"

	"github.com/jsonlt/jsonlt-go/internal/canon"
	"github.com/jsonlt/jsonlt-go/internal/encoding"
	"github.com/jsonlt/jsonlt-go/internal/fsx"
	"github.com/jsonlt/jsonlt-go/internal/header"
	"github.com/jsonlt/jsonlt-go/internal/jsonlterr"
	"github.com/jsonlt/jsonlt-go/internal/jsonval"
)

// Line is one decoded, non-empty line of a JSONLT file together with its
// 1-based position, used to report ParseError locations.
type Line struct {
	Number int
	Object jsonval.Object
}

// File is the fully decoded contents of a JSONLT file.
type File struct {
	Header    *header.Header
	HeaderSet bool
	Lines     []Line
}

// MaxLineBytes bounds a single line's byte length as read from the file,
// before any re-serialization (1 MiB, the record-size limit).
const MaxLineBytes = 1 << 20

// ParseBytes decodes raw file contents per spec §4.6: strip a leading
// BOM, normalise newlines, validate UTF-8, split on blank-line-tolerant
// LF boundaries, and recognise an optional header as the first
// non-empty line.
func ParseBytes(raw []byte, maxDepth int) (File, error) {
	raw = encoding.StripBOM(raw)
	raw = encoding.NormalizeNewlines(raw)
	if err := encoding.ValidateUTF8(raw); err != nil {
		return File{}, jsonlterr.WrapParseError("invalid UTF-8 in file contents", err)
	}

	var out File
	lineNo := 0
	for _, raw := range strings.Split(string(raw), "\n") {
		lineNo++
		text := strings.TrimRight(raw, "\r")
		if text == "" {
			continue
		}
		if len(text) > MaxLineBytes {
			return File{}, jsonlterr.NewLimitError(fmt.Sprintf("line %d has size %d, exceeding the maximum of %d", lineNo, len(text), MaxLineBytes))
		}

		obj, err := canon.ParseLine(text, maxDepth)
		if err != nil {
			return File{}, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if header.IsHeaderLine(obj) {
			if len(out.Lines) > 0 || out.HeaderSet {
				return File{}, jsonlterr.NewParseError(fmt.Sprintf("line %d: header must be the first line of the file", lineNo))
			}
			h, err := header.Parse(obj)
			if err != nil {
				return File{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			out.Header = &h
			out.HeaderSet = true
			continue
		}

		out.Lines = append(out.Lines, Line{Number: lineNo, Object: obj})
	}
	return out, nil
}

// ReadFile reads and decodes the file at path through fs, returning a
// zero-value File (no header, no lines) if the file does not exist.
func ReadFile(fs fsx.FileSystem, path string, maxDepth int) (File, error) {
	stats, err := fs.Stat(path)
	if err != nil {
		return File{}, err
	}
	if !stats.Exists {
		return File{}, nil
	}
	raw, err := fs.ReadBytes(path, -1)
	if err != nil {
		return File{}, err
	}
	return ParseBytes(raw, maxDepth)
}
