package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jholhewres/orgclaw/pkg/orgclaw/memory"
	"github.com/jholhewres/orgclaw/pkg/orgclaw/session"
)

// maxReadFileBytes caps what a single read_file call can feed back into the
// model context.
const maxReadFileBytes = 32 << 10

// ReadFileTool exposes the workspace reference documents and the current
// chat's own memory file. Paths are resolved inside the docs root only;
// anything that escapes it is refused.
type ReadFileTool struct {
	docsDir string
	mem     *memory.Store
}

// NewReadFileTool wires the read_file tool. docsDir may be empty when the
// deployment ships no reference documents.
func NewReadFileTool(docsDir string, mem *memory.Store) *ReadFileTool {
	return &ReadFileTool{docsDir: docsDir, mem: mem}
}

func (t *ReadFileTool) Name() string { return "read_file" }

func (t *ReadFileTool) Description() string {
	return "Read a workspace reference document by relative path, or the current user's memory file with path 'memoria'."
}

func (t *ReadFileTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "relative path under the docs directory, or 'memoria'",
			},
		},
		"required": []string{"path"},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, tc Context, args map[string]any) (string, error) {
	path := strings.TrimSpace(argString(args, "path"))
	if path == "" {
		return "path is required", nil
	}

	if path == "memoria" || path == "memory" {
		if t.mem == nil {
			return "no memory store configured", nil
		}
		key := session.Key{Channel: tc.Channel, ChatID: tc.ChatID}
		content, err := t.mem.Read(key.Safe())
		if err != nil {
			return "", err
		}
		if content == "" {
			return "memory file is empty", nil
		}
		return clip(content), nil
	}

	if t.docsDir == "" {
		return "no reference documents available", nil
	}
	resolved := filepath.Join(t.docsDir, filepath.Clean("/"+path))
	rel, err := filepath.Rel(t.docsDir, resolved)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "path is outside the docs directory", nil
	}
	raw, err := os.ReadFile(resolved)
	if os.IsNotExist(err) {
		return fmt.Sprintf("file %q not found", path), nil
	}
	if err != nil {
		return "", err
	}
	return clip(string(raw)), nil
}

func clip(s string) string {
	if len(s) <= maxReadFileBytes {
		return s
	}
	return s[:maxReadFileBytes] + "\n[truncated]"
}
