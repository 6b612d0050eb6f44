package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testContext() Context {
	return Context{
		Domain:        "example.com",
		Timezone:      "Europe/Moscow",
		AcmeEmail:     "ops@example.com",
		DockerGroupID: 998,
		IncludeTools:  true,
		IncludeBot:    true,
		ProxyTLS:      true,
	}
}

// document unmarshals rendered output, which also proves the anchors and
// aliases resolve for any compliant YAML parser.
func document(t *testing.T, ctx Context) map[string]any {
	t.Helper()
	out, err := Render(ctx)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc), "rendered descriptor must stay parseable")
	return doc
}

func services(t *testing.T, doc map[string]any) map[string]any {
	t.Helper()
	svcs, ok := doc["services"].(map[string]any)
	require.True(t, ok, "descriptor must have a services mapping")
	return svcs
}

func TestRenderMandatoryServicesAlwaysPresent(t *testing.T) {
	variants := []struct {
		name string
		ctx  Context
	}{
		{"all options on", testContext()},
		{"no optional services", Context{Domain: "example.com", Timezone: "UTC", ProxyTLS: true}},
		{"no proxy tls", Context{Domain: "example.com", Timezone: "UTC"}},
		{"empty domain", Context{Timezone: "UTC", ProxyTLS: true}},
	}

	for _, tt := range variants {
		t.Run(tt.name, func(t *testing.T) {
			svcs := services(t, document(t, tt.ctx))
			for _, name := range MandatoryServices {
				assert.Contains(t, svcs, name)
			}
		})
	}
}

func TestRenderOptionalServiceBlocks(t *testing.T) {
	ctx := testContext()
	ctx.IncludeTools = false
	ctx.IncludeBot = false
	out, err := Render(ctx)
	require.NoError(t, err)
	assert.NotContains(t, string(out), ServiceTools)
	assert.NotContains(t, string(out), ServiceBot)

	ctx.IncludeTools = true
	out, err = Render(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(out), ServiceTools+":"))
	assert.NotContains(t, string(out), ServiceBot)

	svcs := services(t, document(t, ctx))
	tools, ok := svcs[ServiceTools].(map[string]any)
	require.True(t, ok, "tools block must be a complete service unit")
	assert.Contains(t, tools, "build")
	assert.Contains(t, tools, "restart")
}

func TestRenderSharedFragmentsStayInLockstep(t *testing.T) {
	svcs := services(t, document(t, testContext()))

	n8n := svcs[ServiceN8N].(map[string]any)
	worker := svcs[ServiceWorker].(map[string]any)

	n8nEnv, ok := n8n["environment"].(map[string]any)
	require.True(t, ok)
	workerEnv, ok := worker["environment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, n8nEnv, workerEnv, "both n8n services must see the same shared environment")

	assert.Equal(t, "postgresdb", n8nEnv["DB_TYPE"])
	assert.Equal(t, "queue", n8nEnv["EXECUTIONS_MODE"])

	assert.Equal(t, n8n["volumes"], worker["volumes"])
}

func TestRenderEmitsFragmentAnchorsOnce(t *testing.T) {
	out, err := Render(testContext())
	require.NoError(t, err)
	text := string(out)

	assert.Equal(t, 1, strings.Count(text, "&"+anchorSharedEnv))
	assert.Equal(t, 1, strings.Count(text, "&"+anchorSharedVolumes))
	assert.Equal(t, 2, strings.Count(text, "*"+anchorSharedEnv))
	assert.Equal(t, 2, strings.Count(text, "*"+anchorSharedVolumes))
}

func TestRenderValueOrDefaultForm(t *testing.T) {
	out, err := Render(testContext())
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "${DOMAIN:-example.com}")
	assert.Contains(t, text, "${GENERIC_TIMEZONE:-Europe/Moscow}")
	assert.Contains(t, text, "${POSTGRES_PASSWORD:-n8n}")
	assert.Contains(t, text, "${ACME_EMAIL:-ops@example.com}")
}

func TestRenderHostRuleReferencesDomain(t *testing.T) {
	svcs := services(t, document(t, testContext()))
	n8n := svcs[ServiceN8N].(map[string]any)

	labels, ok := n8n["labels"].([]any)
	require.True(t, ok)

	var hostRule string
	for _, l := range labels {
		if s, ok := l.(string); ok && strings.Contains(s, "routers.n8n.rule") {
			hostRule = s
		}
	}
	require.NotEmpty(t, hostRule)
	assert.Contains(t, hostRule, "example.com")
}

func TestRenderNoProxyTLSOmitsACME(t *testing.T) {
	ctx := testContext()
	ctx.ProxyTLS = false
	out, err := Render(ctx)
	require.NoError(t, err)
	text := string(out)

	assert.NotContains(t, text, "acme")
	assert.NotContains(t, text, "443:443")
	assert.Contains(t, text, "http://${DOMAIN:-example.com}/")

	svcs := services(t, document(t, ctx))
	assert.Contains(t, svcs, ServiceTraefik, "proxy service itself stays in the document")
}

func TestRenderEmptyDomainStillRenders(t *testing.T) {
	ctx := testContext()
	ctx.Domain = ""
	out, err := Render(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(out), "${DOMAIN:-}")
}

func TestRenderIsPure(t *testing.T) {
	first, err := Render(testContext())
	require.NoError(t, err)
	second, err := Render(testContext())
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRenderNamedVolumes(t *testing.T) {
	doc := document(t, testContext())
	vols, ok := doc["volumes"].(map[string]any)
	require.True(t, ok)
	for _, v := range []string{"n8n_data", "postgres_data", "redis_data", "traefik_data"} {
		assert.Contains(t, vols, v)
	}
}
