package safety

import (
	"regexp"
)

// blockedPatterns rejects shell substitution, SQL mutation, path traversal
// and script injection shapes. Matches never reach the router or the model.
var blockedPatterns = []struct {
	re     *regexp.Regexp
	reason string
}{
	{regexp.MustCompile(`(?i)\$\([^)]*\)`), "shell_substitution"},
	{regexp.MustCompile("`[^`]+`"), "shell_backtick"},
	{regexp.MustCompile(`(?i)\b(?:rm|chmod|chown|mkfs|dd)\s+-[a-z]*r?f`), "shell_destructive"},
	{regexp.MustCompile(`(?i);\s*(?:drop|delete|truncate|update|insert)\s`), "sql_mutation"},
	{regexp.MustCompile(`(?i)\bunion\s+select\b`), "sql_injection"},
	{regexp.MustCompile(`(?i)(?:\.\./){2,}`), "path_traversal"},
	{regexp.MustCompile(`(?i)\b(?:eval|exec)\s*\(`), "code_eval"},
	{regexp.MustCompile(`(?i)<script[\s>]`), "script_tag"},
	{regexp.MustCompile(`(?i)\bos\.system\s*\(`), "os_system"},
}

// CheckBlocklist returns the match reason for a blocked message, or "".
func CheckBlocklist(content string) string {
	for _, p := range blockedPatterns {
		if p.re.MatchString(content) {
			return p.reason
		}
	}
	return ""
}
