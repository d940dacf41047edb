package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/medopaw/ai-cli/internal/config"
	"github.com/medopaw/ai-cli/internal/diff"
	"github.com/medopaw/ai-cli/internal/git/types"
)

func TestParseCompareURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    types.CompareRef
		wantErr bool
	}{
		{
			name: "simple project",
			url:  "https://gitlab.com/owner/repo/-/compare/abc123...def456",
			want: types.CompareRef{Host: "gitlab.com", Project: "owner/repo", Base: "abc123", Head: "def456"},
		},
		{
			name: "nested groups and dotted tags",
			url:  "https://gitlab.cee.redhat.com/group/subgroup/repo/-/compare/v1.2.0...v1.3.0?from_project_id=1",
			want: types.CompareRef{Host: "gitlab.cee.redhat.com", Project: "group/subgroup/repo", Base: "v1.2.0", Head: "v1.3.0"},
		},
		{
			name:    "GitHub URL",
			url:     "https://github.com/owner/repo/compare/a...b",
			wantErr: true,
		},
		{
			name:    "missing compare marker",
			url:     "https://gitlab.com/owner/repo/compare/a...b",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCompareURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCompareURL(%q) expected error, got %+v", tt.url, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCompareURL(%q) unexpected error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ParseCompareURL(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestRenderDiffs(t *testing.T) {
	diffs := []*gitlab.Diff{
		{OldPath: "main.go", NewPath: "main.go", AMode: "100644", BMode: "100644", Diff: "@@ -1 +1 @@\n-old\n+new\n"},
		{OldPath: "new.txt", NewPath: "new.txt", BMode: "100644", NewFile: true, Diff: "@@ -0,0 +1 @@\n+hello"},
		{OldPath: "gone.txt", NewPath: "gone.txt", AMode: "100644", DeletedFile: true, Diff: "@@ -1 +0,0 @@\n-bye\n"},
		{OldPath: "a/x.go", NewPath: "b/x.go", AMode: "100644", BMode: "100644", RenamedFile: true},
		{OldPath: "run.sh", NewPath: "run.sh", AMode: "100644", BMode: "100755"},
	}

	want := "diff --git a/main.go b/main.go\n--- a/main.go\n+++ b/main.go\n@@ -1 +1 @@\n-old\n+new\n" +
		"diff --git a/new.txt b/new.txt\nnew file mode 100644\n--- /dev/null\n+++ b/new.txt\n@@ -0,0 +1 @@\n+hello\n" +
		"diff --git a/gone.txt b/gone.txt\ndeleted file mode 100644\n--- a/gone.txt\n+++ /dev/null\n@@ -1 +0,0 @@\n-bye\n" +
		"diff --git a/a/x.go b/b/x.go\nrename from a/x.go\nrename to b/x.go\n" +
		"diff --git a/run.sh b/run.sh\nold mode 100644\nnew mode 100755\n"

	got := renderDiffs(diffs)
	if got != want {
		t.Errorf("renderDiffs() mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}

	blocks, err := diff.SplitBlocks(got)
	if err != nil {
		t.Fatalf("rendered diff should split into file blocks: %v", err)
	}
	if len(blocks) != len(diffs) {
		t.Errorf("got %d file blocks, want %d", len(blocks), len(diffs))
	}
}

func TestFetchDiff(t *testing.T) {
	var gotURI, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"commits":[],"diffs":[{"old_path":"app.py","new_path":"app.py","a_mode":"100644","b_mode":"100644","diff":"@@ -1 +1 @@\n-a\n+b\n","new_file":false,"renamed_file":false,"deleted_file":false}],"compare_timeout":false,"compare_same_ref":false}`)
	}))
	defer server.Close()

	cfg := &config.Config{GitLab: config.GitLabConfig{Token: "glpat-test", BaseURL: server.URL}}
	source, err := NewSource(cfg)
	if err != nil {
		t.Fatalf("NewSource() unexpected error: %v", err)
	}

	got, err := source.FetchDiff(context.Background(), server.URL+"/group/sub/proj/-/compare/v1.0...v1.1")
	if err != nil {
		t.Fatalf("FetchDiff() unexpected error: %v", err)
	}

	want := "diff --git a/app.py b/app.py\n--- a/app.py\n+++ b/app.py\n@@ -1 +1 @@\n-a\n+b\n"
	if got != want {
		t.Errorf("FetchDiff() = %q, want %q", got, want)
	}
	if !strings.Contains(gotURI, "/api/v4/projects/group%2Fsub%2Fproj/repository/compare") {
		t.Errorf("unexpected request URI %q", gotURI)
	}
	for _, param := range []string{"from=v1.0", "to=v1.1", "straight=false"} {
		if !strings.Contains(gotURI, param) {
			t.Errorf("request URI %q missing %s", gotURI, param)
		}
	}
	if gotToken != "glpat-test" {
		t.Errorf("PRIVATE-TOKEN = %q, want configured token", gotToken)
	}
}

func TestFetchDiff_OtherHostIsAnonymous(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("PRIVATE-TOKEN")
		fmt.Fprint(w, `{"commits":[],"diffs":[]}`)
	}))
	defer server.Close()

	cfg := &config.Config{GitLab: config.GitLabConfig{Token: "glpat-test", BaseURL: "https://gitlab.example.com"}}
	source, err := NewSource(cfg)
	if err != nil {
		t.Fatalf("NewSource() unexpected error: %v", err)
	}

	if _, err := source.FetchDiff(context.Background(), server.URL+"/g/p/-/compare/a...b"); err != nil {
		t.Fatalf("FetchDiff() unexpected error: %v", err)
	}
	if gotToken != "" {
		t.Errorf("token sent to a host other than gitlab.base_url: %q", gotToken)
	}
}

func TestNewSourceRejectsBadBaseURL(t *testing.T) {
	cfg := &config.Config{GitLab: config.GitLabConfig{BaseURL: "not a url"}}
	if _, err := NewSource(cfg); err == nil {
		t.Error("NewSource() expected error for invalid base URL")
	}
}
