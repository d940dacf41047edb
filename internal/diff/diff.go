// Package diff splits unified git diffs into per-file blocks, groups those blocks into
// size-bounded segments and computes whole-diff statistics.
package diff

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// fileMarker starts every per-file block in `git diff` output.
const fileMarker = "diff --git "

// ErrNoFileBlocks is returned by SplitBlocks when the input holds no per-file markers.
// The whole input is still returned as a single block.
var ErrNoFileBlocks = errors.New("diff contains no file blocks")

// FileBlock is one file's complete diff: its header line and every hunk that follows,
// up to the next file marker or the end of input.
type FileBlock struct {
	Path   string // path of the file after the change ("" when it cannot be determined)
	Text   string // exact block text, including the trailing newline
	Length int    // character (rune) count of Text
}

// DiffSegment is an ordered run of whole file blocks sent to the summarizer as one request.
type DiffSegment struct {
	Index   int
	Blocks  []FileBlock
	Payload string // concatenation of every block's Text
	Length  int    // character (rune) count of Payload
}

// Paths returns the file paths covered by the segment in diff order.
func (s DiffSegment) Paths() []string {
	paths := make([]string, 0, len(s.Blocks))
	for _, b := range s.Blocks {
		if b.Path != "" {
			paths = append(paths, b.Path)
		}
	}
	return paths
}

// Length returns the character length used for every size comparison in this package.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// SplitBlocks cuts a raw diff into per-file blocks. Concatenating the Text of every
// returned block reproduces the input exactly; any preamble before the first marker
// (such as a format-patch header) is kept with the first block.
func SplitBlocks(raw string) ([]FileBlock, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var starts []int
	offset := 0
	for offset < len(raw) {
		if strings.HasPrefix(raw[offset:], fileMarker) {
			starts = append(starts, offset)
		}
		next := strings.IndexByte(raw[offset:], '\n')
		if next < 0 {
			break
		}
		offset += next + 1
	}

	if len(starts) == 0 {
		return []FileBlock{newBlock(raw)}, ErrNoFileBlocks
	}

	// the preamble travels with the first block
	starts[0] = 0

	blocks := make([]FileBlock, 0, len(starts))
	for i, start := range starts {
		end := len(raw)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		blocks = append(blocks, newBlock(raw[start:end]))
	}
	return blocks, nil
}

func newBlock(text string) FileBlock {
	return FileBlock{
		Path:   blockPath(text),
		Text:   text,
		Length: Length(text),
	}
}

// blockPath extracts the post-change path of a block. The `+++` line is preferred since
// it survives spaces in file names; deleted files fall back to the `---` line and
// finally to the `diff --git` header.
func blockPath(text string) string {
	var header, oldPath string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, fileMarker) && header == "":
			header = strings.TrimPrefix(line, fileMarker)
		case strings.HasPrefix(line, "+++ "):
			if p := trimSidePrefix(strings.TrimPrefix(line, "+++ "), "b/"); p != "/dev/null" {
				return p
			}
		case strings.HasPrefix(line, "--- "):
			if p := trimSidePrefix(strings.TrimPrefix(line, "--- "), "a/"); p != "/dev/null" {
				oldPath = p
			}
		case strings.HasPrefix(line, "@@"):
			// hunks started, no more headers for this block
			if oldPath != "" {
				return oldPath
			}
			return headerPath(header)
		}
	}
	if oldPath != "" {
		return oldPath
	}
	return headerPath(header)
}

// headerPath reads the b/ side of a `diff --git a/x b/x` header.
func headerPath(header string) string {
	if header == "" {
		return ""
	}
	if idx := strings.LastIndex(header, " b/"); idx >= 0 {
		return unquote(header[idx+3:])
	}
	if idx := strings.LastIndex(header, ` "b/`); idx >= 0 {
		return strings.TrimPrefix(unquote(header[idx+1:]), "b/")
	}
	return ""
}

func trimSidePrefix(p, side string) string {
	p = unquote(strings.TrimSpace(p))
	// git appends a tab when the name contains spaces
	if idx := strings.IndexByte(p, '\t'); idx >= 0 {
		p = p[:idx]
	}
	return strings.TrimPrefix(p, side)
}

func unquote(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
		p = p[1 : len(p)-1]
	}
	return p
}
