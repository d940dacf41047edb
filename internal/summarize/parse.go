package summarize

import (
	"regexp"
	"strings"
)

// FileSummary is a one-line description of a file's change.
type FileSummary struct {
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description" yaml:"description"`
}

var bulletPrefix = regexp.MustCompile(`^(?:[-*•+]|\d+[.)])\s+`)

// separators between a path and its description, in order of preference
var separators = []string{": ", " - ", " — ", " – "}

// ParseResponse reads a "path: description" reply for a segment covering paths.
// Every path in paths gets exactly one entry, in the given order, with an empty
// description when the reply never mentions it. Paths the reply names that are
// not in paths are appended as extra entries. A reply with no usable line is
// ErrUnparseableResponse.
//
// A segment without paths (input that had no file headers) keeps the whole reply
// as one entry with an empty path.
func ParseResponse(reply string, paths []string) ([]FileSummary, error) {
	if len(paths) == 0 {
		text := strings.TrimSpace(reply)
		if text == "" {
			return nil, ErrUnparseableResponse
		}
		return []FileSummary{{Description: text}}, nil
	}

	known := make(map[string]int, len(paths))
	summaries := make([]FileSummary, 0, len(paths))
	for _, p := range paths {
		if _, dup := known[p]; dup {
			continue
		}
		known[p] = len(summaries)
		summaries = append(summaries, FileSummary{Path: p})
	}

	var extras []FileSummary
	extraSeen := make(map[string]int)
	parsed := 0

	for _, line := range strings.Split(reply, "\n") {
		path, desc, ok := splitLine(line)
		if !ok {
			continue
		}

		if i, found := lookup(known, path); found {
			parsed++
			if summaries[i].Description == "" {
				summaries[i].Description = desc
			}
			continue
		}

		if !looksLikePath(path) {
			continue
		}
		parsed++
		if i, seen := extraSeen[path]; seen {
			if extras[i].Description == "" {
				extras[i].Description = desc
			}
			continue
		}
		extraSeen[path] = len(extras)
		extras = append(extras, FileSummary{Path: path, Description: desc})
	}

	if parsed == 0 {
		return nil, ErrUnparseableResponse
	}
	return append(summaries, extras...), nil
}

// splitLine extracts a path and description from one reply line.
func splitLine(line string) (path, desc string, ok bool) {
	line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
	line = bulletPrefix.ReplaceAllString(line, "")
	if line == "" || strings.HasPrefix(line, "```") || strings.HasPrefix(line, "#") {
		return "", "", false
	}

	path = line
	for _, sep := range separators {
		if i := strings.Index(line, sep); i > 0 {
			path, desc = line[:i], line[i+len(sep):]
			break
		}
	}
	if desc == "" {
		path = strings.TrimSuffix(path, ":")
	}

	path = cleanPath(path)
	if path == "" {
		return "", "", false
	}
	return path, strings.TrimSpace(desc), true
}

// cleanPath strips markdown emphasis and quoting around a path.
func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	for _, wrap := range []string{"__", "`", "\"", "'"} {
		p = strings.TrimPrefix(p, wrap)
		p = strings.TrimSuffix(p, wrap)
	}
	p = strings.TrimSuffix(strings.TrimSpace(p), ":")
	return strings.TrimSpace(p)
}

// lookup matches path against the segment's paths, tolerating git's a/ b/ prefixes
// and names shortened to a path suffix ("main.go" for "cmd/ai/main.go") when exactly
// one path has that suffix.
func lookup(known map[string]int, path string) (int, bool) {
	if i, ok := known[path]; ok {
		return i, true
	}
	candidates := []string{path}
	for _, prefix := range []string{"b/", "a/", "./"} {
		if trimmed, cut := strings.CutPrefix(path, prefix); cut {
			if i, ok := known[trimmed]; ok {
				return i, true
			}
			candidates = append(candidates, trimmed)
		}
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		match, found := 0, 0
		for p, i := range known {
			if strings.HasSuffix(p, "/"+candidate) {
				match = i
				found++
			}
		}
		if found == 1 {
			return match, true
		}
	}
	return 0, false
}

// looksLikePath rejects prose such as "Here are the summaries".
func looksLikePath(s string) bool {
	if strings.ContainsAny(s, " \t") {
		return false
	}
	return strings.ContainsAny(s, "./")
}
