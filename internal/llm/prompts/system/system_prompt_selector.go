package system

import (
	_ "embed"
	"log/slog"
)

//go:embed system_prompt_v1.md
var systemPromptV1 string

//go:embed system_prompt_v2.md
var systemPromptV2 string

// SupportedVersions lists the segment summary prompt versions.
var SupportedVersions = []string{"v1", "v2"}

// GetSystemPrompt returns the segment summary instructions for version, falling back to v1
func GetSystemPrompt(version string) string {
	switch version {
	case "v1":
		return systemPromptV1
	case "v2":
		return systemPromptV2
	default:
		slog.Warn("Unknown summary prompt version, falling back to v1",
			"version", version,
			"supported_versions", SupportedVersions)
		return systemPromptV1
	}
}
