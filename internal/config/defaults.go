package config

// defaultCategories is the built-in detection table, used when the YAML
// config omits categories. Order is detection order. All categories are
// case-insensitive except template injection, whose tokens ({{, ${, <%=)
// must match exactly.
func defaultCategories() []CategoryRule {
	return []CategoryRule{
		{
			Name:  "sql_injection",
			Issue: "sql_injection_attempt",
			Patterns: []PatternRule{
				{Label: "quoted_or", Expr: `'\s*or\s*'`},
				{Label: "or_true", Expr: `'\s*or\s*1\s*=\s*1`},
				{Label: "union_select", Expr: `union\s+select`},
				{Label: "drop_table", Expr: `drop\s+table`},
				{Label: "insert_into", Expr: `insert\s+into`},
				{Label: "delete_from", Expr: `delete\s+from`},
				{Label: "select_star", Expr: `select\s+\*\s+from`},
				{Label: "xp_cmdshell", Expr: `xp_cmdshell`},
			},
		},
		{
			Name:  "xss",
			Issue: "xss_attempt",
			Patterns: []PatternRule{
				{Label: "script_tag", Expr: `<script`},
				{Label: "javascript_uri", Expr: `javascript:`},
				{Label: "event_handler", Expr: `on\w+\s*=`},
				{Label: "document_access", Expr: `document\.(write|cookie)`},
			},
		},
		{
			Name:  "command_injection",
			Issue: "command_injection_attempt",
			Patterns: []PatternRule{
				{Label: "chained_command", Expr: `;\s*(rm|del|cat|wget|curl)\b`},
				{Label: "ampersand_echo", Expr: `&\s*echo\b`},
				{Label: "pipe_netcat", Expr: `\|\s*nc\b`},
				{Label: "subshell", Expr: `\$\([^)]*\)`},
				{Label: "backticks", Expr: "`[^`]+`"},
			},
		},
		{
			Name:  "nosql_injection",
			Issue: "nosql_injection_attempt",
			Patterns: []PatternRule{
				{Label: "ne_operator", Expr: `\$ne\b`},
				{Label: "where_operator", Expr: `\$where\b`},
				{Label: "regex_operator", Expr: `\$regex\b`},
				{Label: "gt_operator", Expr: `\$gt\b`},
				{Label: "return_true", Expr: `return\s+true`},
			},
		},
		{
			Name:  "ldap_injection",
			Issue: "ldap_injection_attempt",
			Patterns: []PatternRule{
				{Label: "wildcard_close", Expr: `\*\)`},
				{Label: "filter_concat", Expr: `\)\(`},
				{Label: "or_filter", Expr: `\(\|`},
				{Label: "and_filter", Expr: `\(&`},
			},
		},
		{
			Name:  "path_traversal",
			Issue: "path_traversal_attempt",
			Patterns: []PatternRule{
				{Label: "dot_dot_slash", Expr: `\.\./`},
				{Label: "dot_dot_backslash", Expr: `\.\.\\`},
				{Label: "etc_files", Expr: `/etc/(passwd|shadow)`},
				{Label: "windows_system", Expr: `[a-z]:\\windows|system32`},
			},
		},
		{
			Name:  "xml_xxe",
			Issue: "xxe_attempt",
			Patterns: []PatternRule{
				{Label: "doctype", Expr: `<!doctype`},
				{Label: "entity", Expr: `<!entity`},
				{Label: "system_uri", Expr: `system\s+["']`},
			},
		},
		{
			Name:          "template_injection",
			Issue:         "template_injection_attempt",
			CaseSensitive: true,
			Patterns: []PatternRule{
				{Label: "double_brace", Expr: `\{\{`},
				{Label: "dollar_brace", Expr: `\$\{`},
				{Label: "erb_tag", Expr: `<%=`},
				{Label: "hash_brace", Expr: `#\{`},
			},
		},
		{
			Name:     "code_execution",
			Issue:    "code_execution_attempt",
			MatchAll: true,
			Patterns: []PatternRule{
				{Label: "eval", Expr: `\beval\s*\(`},
				{Label: "exec", Expr: `\bexec\s*\(`},
				{Label: "system", Expr: `\bsystem\s*\(`},
				{Label: "shell_exec", Expr: `\bshell_exec\s*\(`},
				{Label: "passthru", Expr: `\bpassthru\s*\(`},
				{Label: "popen", Expr: `\bpopen\s*\(`},
				{Label: "proc_open", Expr: `\bproc_open\s*\(`},
				{Label: "python_import", Expr: `__import__`},
			},
		},
		{
			Name:     "suspicious_function",
			Issue:    "suspicious_function_detected",
			MatchAll: true,
			Patterns: []PatternRule{
				{Label: "base64_decode", Expr: `\bbase64_decode\b`},
				{Label: "fopen", Expr: `\bfopen\s*\(`},
				{Label: "file_get_contents", Expr: `\bfile_get_contents\s*\(`},
				{Label: "file_put_contents", Expr: `\bfile_put_contents\s*\(`},
				{Label: "unlink", Expr: `\bunlink\s*\(`},
				{Label: "chmod", Expr: `\bchmod\s*\(`},
				{Label: "chown", Expr: `\bchown\s*\(`},
				{Label: "mkdir", Expr: `\bmkdir\s*\(`},
				{Label: "rmdir", Expr: `\brmdir\s*\(`},
				{Label: "symlink", Expr: `\bsymlink\s*\(`},
				{Label: "curl_exec", Expr: `\bcurl_exec\s*\(`},
				{Label: "move_uploaded_file", Expr: `\bmove_uploaded_file\s*\(`},
			},
		},
		{
			Name:  "suspicious_characters",
			Issue: "suspicious_characters",
			Patterns: []PatternRule{
				{Label: "shell_metacharacters", Expr: "[;\\\\/<>\\[\\]{}|`&]"},
			},
		},
	}
}
