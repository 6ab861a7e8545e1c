package redirects

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "_redirects")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return dir
}

func TestLoad_ParsesLinesSkipsCommentsAndBlanks(t *testing.T) {
	root := writeRules(t, `
# old blog location
/blog/old /blog/new 302

/docs/* /documentation/:splat
/legacy /modern not-a-number
`)

	rules := Load(root, "_redirects")
	require.Len(t, rules, 3)

	require.Equal(t, Rule{From: "/blog/old", To: "/blog/new", Status: 302}, rules[0])
	require.Equal(t, Rule{From: "/docs/*", To: "/documentation/:splat", Status: 301}, rules[1])
	// Ill-formed status falls back to the default without dropping the line.
	require.Equal(t, Rule{From: "/legacy", To: "/modern", Status: 301}, rules[2])
}

func TestLoad_NoPathConfigured(t *testing.T) {
	require.Empty(t, Load(t.TempDir(), ""))
}

func TestLoad_MissingFileDegradesToEmpty(t *testing.T) {
	require.Empty(t, Load(t.TempDir(), "_redirects"))
}

func TestLoad_AbsolutePath(t *testing.T) {
	root := writeRules(t, "/a /b\n")
	rules := Load(t.TempDir(), filepath.Join(root, "_redirects"))
	require.Len(t, rules, 1)
}

func TestMatch_FirstRuleWins(t *testing.T) {
	rules := []Rule{
		{From: "/docs/*", To: "/first"},
		{From: "/docs/guide", To: "/second"},
	}
	rule := Match("/docs/guide", rules)
	require.NotNil(t, rule)
	require.Equal(t, "/first", rule.To)
}

func TestMatch_ExactBeforePattern(t *testing.T) {
	rules := []Rule{{From: "/exact", To: "/dest"}}
	require.NotNil(t, Match("/exact", rules))
	require.Nil(t, Match("/exact/sub", rules))
}

func TestMatch_ParamMatchesSingleSegment(t *testing.T) {
	rules := []Rule{{From: "/blog/:slug", To: "/news/:slug"}}
	require.NotNil(t, Match("/blog/hello", rules))
	require.Nil(t, Match("/blog/hello/deep", rules))
	require.Nil(t, Match("/blog/", rules))
}

func TestMatch_WildcardSpansSegments(t *testing.T) {
	rules := []Rule{{From: "/docs/*", To: "/documentation/:splat"}}
	require.NotNil(t, Match("/docs/api/v2", rules))
}

func TestMatch_EscapesRegexMetacharacters(t *testing.T) {
	rules := []Rule{{From: "/price+list.html", To: "/pricing"}}
	require.NotNil(t, Match("/price+list.html", rules))
	require.Nil(t, Match("/priceelist.html", rules))
}

func TestResolve_LiteralDestination(t *testing.T) {
	rule := Rule{From: "/old", To: "/new"}
	require.Equal(t, "/new", Resolve("/old", rule))
}

func TestResolve_ParamSubstitution(t *testing.T) {
	rule := Rule{From: "/blog/:slug", To: "/news/:slug"}
	require.Equal(t, "/news/hello", Resolve("/blog/hello", rule))
}

func TestResolve_SplatSubstitution(t *testing.T) {
	rule := Rule{From: "/docs/*", To: "/documentation/:splat"}
	require.Equal(t, "/documentation/api/v2", Resolve("/docs/api/v2", rule))
}

func TestResolve_MixedParamsAndSplat(t *testing.T) {
	rule := Rule{From: "/:lang/docs/*", To: "/docs/:lang/:splat"}
	require.Equal(t, "/docs/en/api/v2", Resolve("/en/docs/api/v2", rule))
}

func TestResolve_MatchFailureYieldsLiteral(t *testing.T) {
	rule := Rule{From: "/blog/:slug", To: "/news/:slug"}
	require.Equal(t, "/news/:slug", Resolve("/completely/other", rule))
}
