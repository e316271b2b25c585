// Package catalog holds the static table of bug-pattern detection
// rules. The table is process-wide read-only state: it is built once
// and never mutated during a run.
package catalog

import (
	"bytes"
	"regexp"
	"strings"
	"sync"

	"github.com/phobologic/depscope/internal/model"
)

// Match is one location where a rule fired.
type Match struct {
	Line int // 1-based; 0 for file-level matches
}

// Rule is a single detection pattern. Match must be a pure function of
// the content.
type Rule struct {
	ID        string
	Category  model.Category
	Severity  model.Severity
	Languages []model.Language // empty = applies to every language
	Message   string
	Match     func(src []byte) []Match
}

// Applies reports whether the rule runs for a language tag.
func (r *Rule) Applies(tag model.Language) bool {
	if len(r.Languages) == 0 {
		return true
	}
	for _, l := range r.Languages {
		if l == tag {
			return true
		}
	}
	return false
}

// Catalog is an immutable set of rules.
type Catalog struct {
	rules []Rule
}

// Rules returns the rule table.
func (c *Catalog) Rules() []Rule {
	return c.rules
}

// Without returns a copy of the catalog with the named rules removed.
func (c *Catalog) Without(ids []string) *Catalog {
	if len(ids) == 0 {
		return c
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := &Catalog{}
	for _, r := range c.rules {
		if _, skip := drop[r.ID]; !skip {
			out.rules = append(out.rules, r)
		}
	}
	return out
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog, constructed once per process.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = &Catalog{rules: buildRules()}
	})
	return defaultCatalog
}

// lineMatch builds a predicate firing once per line matching re.
func lineMatch(re *regexp.Regexp) func(src []byte) []Match {
	return func(src []byte) []Match {
		var out []Match
		for n, line := range strings.Split(string(src), "\n") {
			if re.MatchString(line) {
				out = append(out, Match{Line: n + 1})
			}
		}
		return out
	}
}

func buildRules() []Rule {
	return []Rule{
		{
			ID:        "py-mutable-default-arg",
			Category:  model.CategoryAPIMisuse,
			Severity:  model.SeverityHigh,
			Languages: []model.Language{model.LangPython},
			Message:   "mutable default argument is shared across calls",
			Match:     lineMatch(regexp.MustCompile(`def\s+\w+\([^)]*=\s*(\[\]|\{\})`)),
		},
		{
			ID:        "py-bare-except",
			Category:  model.CategoryAPIMisuse,
			Severity:  model.SeverityMedium,
			Languages: []model.Language{model.LangPython},
			Message:   "bare except swallows every exception, including KeyboardInterrupt",
			Match:     lineMatch(regexp.MustCompile(`^\s*except\s*:`)),
		},
		{
			ID:        "eval-usage",
			Category:  model.CategoryAPIMisuse,
			Severity:  model.SeverityHigh,
			Languages: []model.Language{model.LangPython, model.LangJavaScript, model.LangTypeScript, model.LangRuby},
			Message:   "eval executes arbitrary code from a runtime value",
			Match:     lineMatch(regexp.MustCompile(`\beval\s*\(`)),
		},
		{
			ID:        "py-wildcard-import",
			Category:  model.CategoryImportDependency,
			Severity:  model.SeverityMedium,
			Languages: []model.Language{model.LangPython},
			Message:   "wildcard import hides the dependency surface",
			Match:     lineMatch(regexp.MustCompile(`^\s*from\s+[\w.]+\s+import\s+\*`)),
		},
		{
			ID:        "java-wildcard-import",
			Category:  model.CategoryImportDependency,
			Severity:  model.SeverityLow,
			Languages: []model.Language{model.LangJava},
			Message:   "wildcard import hides the dependency surface",
			Match:     lineMatch(regexp.MustCompile(`^\s*import\s+[\w.]+\.\*\s*;`)),
		},
		{
			ID:       "hardcoded-credential",
			Category: model.CategoryConfiguration,
			Severity: model.SeverityCritical,
			Message:  "credential literal committed to source",
			Match:    lineMatch(regexp.MustCompile(`(?i)(password|passwd|secret|api_key|apikey|auth_token)\s*[:=]\s*["'][^"']{4,}["']`)),
		},
		{
			ID:        "py-debug-enabled",
			Category:  model.CategoryConfiguration,
			Severity:  model.SeverityMedium,
			Languages: []model.Language{model.LangPython},
			Message:   "debug mode enabled in code",
			Match:     lineMatch(regexp.MustCompile(`^\s*DEBUG\s*=\s*True\b`)),
		},
		{
			ID:       "insecure-url",
			Category: model.CategoryConfiguration,
			Severity: model.SeverityLow,
			Message:  "cleartext http URL",
			Match:    matchInsecureURL,
		},
		{
			ID:       "bind-all-interfaces",
			Category: model.CategoryConfiguration,
			Severity: model.SeverityMedium,
			Message:  "binding to 0.0.0.0 exposes the service on every interface",
			Match:    lineMatch(regexp.MustCompile(`["']0\.0\.0\.0["']`)),
		},
		{
			ID:        "js-loose-equality",
			Category:  model.CategoryTypeMismatch,
			Severity:  model.SeverityMedium,
			Languages: []model.Language{model.LangJavaScript},
			Message:   "loose equality coerces operand types; use === or !==",
			Match:     lineMatch(regexp.MustCompile(`[^=!<>&|+\-*/%^]==[^=]|[^!]!=[^=]`)),
		},
		{
			ID:        "py-none-equality",
			Category:  model.CategoryTypeMismatch,
			Severity:  model.SeverityLow,
			Languages: []model.Language{model.LangPython},
			Message:   "compare with None using is / is not",
			Match:     lineMatch(regexp.MustCompile(`(==|!=)\s*None\b`)),
		},
		{
			ID:        "py-open-without-with",
			Category:  model.CategoryResourceManagement,
			Severity:  model.SeverityHigh,
			Languages: []model.Language{model.LangPython},
			Message:   "open() outside a with block can leak the file handle",
			Match:     matchOpenWithoutWith,
		},
		{
			ID:        "c-malloc-without-free",
			Category:  model.CategoryResourceManagement,
			Severity:  model.SeverityMedium,
			Languages: []model.Language{model.LangC, model.LangCPP},
			Message:   "file allocates with malloc but never calls free",
			Match:     matchMallocWithoutFree,
		},
		{
			ID:       "sleep-based-sync",
			Category: model.CategoryConcurrency,
			Severity: model.SeverityLow,
			Message:  "sleep used as synchronization is timing-dependent",
			Match:    lineMatch(regexp.MustCompile(`(?i)\b(?:time\.)?sleep\s*\(\s*\d`)),
		},
		{
			ID:        "js-var-declaration",
			Category:  model.CategoryAPIMisuse,
			Severity:  model.SeverityLow,
			Languages: []model.Language{model.LangJavaScript, model.LangTypeScript},
			Message:   "var is function-scoped and hoisted; use let or const",
			Match:     lineMatch(regexp.MustCompile(`^\s*var\s+\w`)),
		},
	}
}

var insecureURLRe = regexp.MustCompile(`http://[\w.\-:/]+`)

// matchInsecureURL skips loopback addresses, which are the common
// legitimate http use.
func matchInsecureURL(src []byte) []Match {
	var out []Match
	for n, line := range strings.Split(string(src), "\n") {
		m := insecureURLRe.FindString(line)
		if m == "" {
			continue
		}
		if strings.Contains(m, "localhost") || strings.Contains(m, "127.0.0.1") {
			continue
		}
		out = append(out, Match{Line: n + 1})
	}
	return out
}

var pyOpenRe = regexp.MustCompile(`\bopen\s*\(`)

func matchOpenWithoutWith(src []byte) []Match {
	var out []Match
	for n, line := range strings.Split(string(src), "\n") {
		if !pyOpenRe.MatchString(line) {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "with ") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, Match{Line: n + 1})
	}
	return out
}

var (
	cMallocRe = regexp.MustCompile(`\bmalloc\s*\(`)
	cFreeRe   = regexp.MustCompile(`\bfree\s*\(`)
)

// matchMallocWithoutFree is file-level: one match at the first malloc
// when the file never frees.
func matchMallocWithoutFree(src []byte) []Match {
	if cFreeRe.Match(src) {
		return nil
	}
	loc := cMallocRe.FindIndex(src)
	if loc == nil {
		return nil
	}
	line := bytes.Count(src[:loc[0]], []byte("\n")) + 1
	return []Match{{Line: line}}
}
