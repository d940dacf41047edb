package diff

import (
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/src-d/enry/v2"
)

// UnknownFileType marks files without an extension.
const UnknownFileType = "unknown"

// Stats holds whole-diff statistics, computed independently of segmentation.
type Stats struct {
	FilesChanged int      `json:"files_changed" yaml:"files_changed"`
	LinesAdded   int      `json:"lines_added" yaml:"lines_added"`
	LinesDeleted int      `json:"lines_deleted" yaml:"lines_deleted"`
	FileTypes    []string `json:"file_types" yaml:"file_types"`
	Languages    []string `json:"languages,omitempty" yaml:"languages,omitempty"`
	Bytes        int      `json:"bytes" yaml:"bytes"`
}

// fileCount is the per-file tally both extraction paths produce.
type fileCount struct {
	name    string
	added   int
	deleted int
	content []byte // post-change lines seen in hunks, capped at maxContentSample
}

// maxContentSample bounds the text kept per file for language detection.
const maxContentSample = 16 * 1024

func (fc *fileCount) sample(line string) {
	if len(fc.content) < maxContentSample {
		fc.content = append(fc.content, line...)
	}
}

// ExtractStats computes statistics for raw. It never fails: input that the diff parser
// rejects is counted by line prefix instead, and anything unrecognisable counts as zero.
func ExtractStats(raw string) Stats {
	stats := Stats{Bytes: len(raw)}
	if strings.TrimSpace(raw) == "" {
		return stats
	}

	files, err := parseFiles(raw)
	if err != nil || len(files) == 0 {
		if err != nil {
			slog.Debug("Diff parser rejected input, counting by line prefix", "error", err)
		}
		files = countByPrefix(raw)
	}

	types := make(map[string]struct{})
	languages := make(map[string]struct{})
	for _, f := range files {
		stats.FilesChanged++
		stats.LinesAdded += f.added
		stats.LinesDeleted += f.deleted
		if f.name == "" {
			continue
		}
		types[fileType(f.name)] = struct{}{}
		if lang := detectLanguage(f.name, f.content); lang != "" {
			languages[lang] = struct{}{}
		}
	}

	stats.FileTypes = sortedKeys(types)
	stats.Languages = sortedKeys(languages)
	return stats
}

func parseFiles(raw string) ([]fileCount, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, err
	}

	files := make([]fileCount, 0, len(parsed))
	for _, f := range parsed {
		fc := fileCount{name: f.NewName}
		if f.IsDelete || fc.name == "" {
			fc.name = f.OldName
		}
		for _, frag := range f.TextFragments {
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					fc.added++
					fc.sample(line.Line)
				case gitdiff.OpDelete:
					fc.deleted++
				case gitdiff.OpContext:
					fc.sample(line.Line)
				}
			}
		}
		files = append(files, fc)
	}
	return files, nil
}

// countByPrefix is the best-effort path: every block is a file, and inside hunks a
// leading '+' or '-' marks an added or deleted line.
func countByPrefix(raw string) []fileCount {
	blocks, _ := SplitBlocks(raw)
	files := make([]fileCount, 0, len(blocks))
	for _, b := range blocks {
		fc := fileCount{name: b.Path}
		inHunk := false
		for _, line := range strings.Split(b.Text, "\n") {
			switch {
			case strings.HasPrefix(line, "@@"):
				inHunk = true
			case strings.HasPrefix(line, fileMarker):
				inHunk = false
			case !inHunk:
				continue
			case strings.HasPrefix(line, "+"):
				fc.added++
				fc.sample(line[1:] + "\n")
			case strings.HasPrefix(line, "-"):
				fc.deleted++
			case strings.HasPrefix(line, " "):
				fc.sample(line[1:] + "\n")
			}
		}
		if fc.name == "" && fc.added == 0 && fc.deleted == 0 {
			continue
		}
		files = append(files, fc)
	}
	return files
}

// fileType returns the lowercase extension of name without the dot.
func fileType(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if ext == "" {
		return UnknownFileType
	}
	return ext
}

// detectLanguage names the language of a file. An extension shared by several
// languages (.rs is Rust or RenderScript) is resolved from content, and left
// undetected when the content does not decide it.
func detectLanguage(name string, content []byte) string {
	base := path.Base(name)
	if lang, _ := enry.GetLanguageByFilename(base); lang != "" {
		return lang
	}
	lang, safe := enry.GetLanguageByExtension(base)
	if safe || lang == "" {
		return lang
	}
	if len(content) == 0 {
		return ""
	}
	if byContent, ok := enry.GetLanguageByContent(base, content); ok {
		return byContent
	}
	return ""
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
