package diff

import (
	"errors"
	"log/slog"
	"strings"
)

// Segment groups the file blocks of raw into segments of at most maxSegmentLength
// characters. Blocks are never split: a block that alone exceeds the limit becomes its
// own oversized segment. A maxSegmentLength <= 0 disables the limit.
//
// The limit is strict: blocks of 2000, 3000 and 4000 characters under a limit of 8000
// give two segments (5000 and 4000), never one 9000-character segment.
//
// Input without any file markers is treated as one block rather than rejected.
func Segment(raw string, maxSegmentLength int) []DiffSegment {
	blocks, err := SplitBlocks(raw)
	if errors.Is(err, ErrNoFileBlocks) {
		slog.Debug("Diff has no file markers, using it as a single block", "length", blocks[0].Length)
	}
	if len(blocks) == 0 {
		return nil
	}

	var (
		segments   []DiffSegment
		current    []FileBlock
		currentLen int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, newSegment(len(segments), current, currentLen))
		current = nil
		currentLen = 0
	}

	for _, block := range blocks {
		if len(current) > 0 && maxSegmentLength > 0 && currentLen+block.Length > maxSegmentLength {
			flush()
		}
		current = append(current, block)
		currentLen += block.Length
	}
	flush()

	slog.Debug("Segmented diff",
		"blocks", len(blocks),
		"segments", len(segments),
		"max_segment_length", maxSegmentLength)

	return segments
}

func newSegment(index int, blocks []FileBlock, length int) DiffSegment {
	var payload strings.Builder
	for _, b := range blocks {
		payload.WriteString(b.Text)
	}
	return DiffSegment{
		Index:   index,
		Blocks:  blocks,
		Payload: payload.String(),
		Length:  length,
	}
}
