// Package redirects loads Netlify-style redirect rule files and resolves
// pattern matches with parameter and splat capture substitution.
package redirects

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/linkcheck/internal/logfields"
)

// Rule is one pattern -> destination mapping. Order in the rule file is
// significant: the first matching rule wins.
type Rule struct {
	From   string // Pattern; may contain `*` wildcards and `:name` parameters
	To     string // Destination template; may reference parameters plus `:splat`
	Status int    // Informational only, never used in resolution
}

// defaultStatus is applied when a rule has no status token, or one that
// does not parse as an integer.
const defaultStatus = 301

// Load reads a redirect rule file. An empty rulePath yields an empty
// table. A read failure degrades to an empty table with a warning; it is
// never a hard error. rulePath is resolved relative to buildRoot unless
// absolute.
func Load(buildRoot, rulePath string) []Rule {
	if rulePath == "" {
		return nil
	}
	if !filepath.IsAbs(rulePath) {
		rulePath = filepath.Join(buildRoot, rulePath)
	}

	file, err := os.Open(filepath.Clean(rulePath))
	if err != nil {
		slog.Warn("Could not read redirects file, continuing without redirect rules",
			logfields.Path(rulePath),
			logfields.Error(err))
		return nil
	}
	defer func() {
		_ = file.Close()
	}()

	var rules []Rule
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		rule := Rule{From: fields[0], To: fields[1], Status: defaultStatus}
		if len(fields) >= 3 {
			if status, err := strconv.Atoi(fields[2]); err == nil {
				rule.Status = status
			}
		}
		rules = append(rules, rule)
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("Error while reading redirects file, using rules parsed so far",
			logfields.Path(rulePath),
			logfields.Error(err))
	}

	return rules
}

// Match returns the first rule whose pattern matches path, or nil.
func Match(path string, rules []Rule) *Rule {
	for i := range rules {
		if matches(path, rules[i].From) {
			return &rules[i]
		}
	}
	return nil
}

// matches tests a single pattern against a path. Exact equality is the
// fast path; otherwise the pattern is compiled to an anchored regexp.
func matches(path, pattern string) bool {
	if path == pattern {
		return true
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

// paramToken matches a `:identifier` parameter inside a pattern or
// destination template.
var paramToken = regexp.MustCompile(`:[A-Za-z_][A-Za-z0-9_]*`)

// compilePattern translates a rule pattern into an anchored regexp:
// literal runs are escaped, each `:name` becomes a single-segment capture
// and each `*` a greedy suffix capture.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")

	rest := pattern
	for rest != "" {
		star := strings.IndexByte(rest, '*')
		param := paramToken.FindStringIndex(rest)

		switch {
		case param != nil && (star < 0 || param[0] < star):
			sb.WriteString(regexp.QuoteMeta(rest[:param[0]]))
			sb.WriteString(`([^/]+)`)
			rest = rest[param[1]:]
		case star >= 0:
			sb.WriteString(regexp.QuoteMeta(rest[:star]))
			sb.WriteString(`(.*)`)
			rest = rest[star+1:]
		default:
			sb.WriteString(regexp.QuoteMeta(rest))
			rest = ""
		}
	}

	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// Resolve substitutes the captures produced by matching path against the
// rule's pattern into its destination template. Parameters are consumed
// in left-to-right order, then wildcards; `:splat` always receives the
// last capture (Netlify semantics) after ordinary substitution. A rule
// whose pattern carries no parameters, or an unexpected match failure,
// yields the literal destination.
func Resolve(path string, rule Rule) string {
	if !strings.ContainsAny(rule.From, ":*") {
		return rule.To
	}

	re, err := compilePattern(rule.From)
	if err != nil {
		return rule.To
	}
	groups := re.FindStringSubmatch(path)
	if len(groups) < 2 {
		return rule.To
	}
	captures := groups[1:]

	next := 0
	take := func() string {
		if next >= len(captures) {
			return ""
		}
		c := captures[next]
		next++
		return c
	}

	dest := paramToken.ReplaceAllStringFunc(rule.To, func(token string) string {
		if token == ":splat" {
			return token // substituted last, from the final capture
		}
		return take()
	})

	for strings.ContainsRune(dest, '*') {
		dest = strings.Replace(dest, "*", take(), 1)
	}

	dest = strings.ReplaceAll(dest, ":splat", captures[len(captures)-1])

	return dest
}
