package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEmbedded(t *testing.T) *Catalog {
	t.Helper()
	cat, err := EmbeddedSource{}.Load(context.Background())
	require.NoError(t, err)
	return cat
}

func TestResolveCanonical(t *testing.T) {
	cat := loadEmbedded(t)

	schema, ok := cat.Resolve("n8n-nodes-base.webhook")
	require.True(t, ok)
	assert.Equal(t, "n8n-nodes-base.webhook", schema.CanonicalType)
	assert.Equal(t, 2.0, schema.DefaultVersion)
}

func TestResolveShortFormsAndAliases(t *testing.T) {
	cat := loadEmbedded(t)

	cases := map[string]string{
		"webhook":     "n8n-nodes-base.webhook",
		"Webhook":     "n8n-nodes-base.webhook",
		"http":        "n8n-nodes-base.httpRequest",
		"httpRequest": "n8n-nodes-base.httpRequest",
		"cron":        "n8n-nodes-base.scheduleTrigger",
		"agent":       "@n8n/n8n-nodes-langchain.agent",
	}
	for raw, want := range cases {
		schema, ok := cat.Resolve(raw)
		require.True(t, ok, "expected %q to resolve", raw)
		assert.Equal(t, want, schema.CanonicalType, "raw %q", raw)
	}
}

func TestResolveMalformedPrefixVariants(t *testing.T) {
	cat := loadEmbedded(t)

	schema, ok := cat.Resolve("nodes-base.webhook")
	require.True(t, ok)
	assert.Equal(t, "n8n-nodes-base.webhook", schema.CanonicalType)

	schema, ok = cat.Resolve("base.webhook")
	require.True(t, ok)
	assert.Equal(t, "n8n-nodes-base.webhook", schema.CanonicalType)

	schema, ok = cat.Resolve("n8n-nodes-langchain.agent")
	require.True(t, ok)
	assert.Equal(t, "@n8n/n8n-nodes-langchain.agent", schema.CanonicalType)
}

func TestResolveNeverGuesses(t *testing.T) {
	cat := loadEmbedded(t)

	for _, raw := range []string{
		"",
		"frobnicator",
		"acme-nodes.webhookish",
		"totally-different.webhook2",
		"other-package.webhook", // prefix unrelated to the canonical one
	} {
		_, ok := cat.Resolve(raw)
		assert.False(t, ok, "expected %q not to resolve", raw)
	}
}

func TestMigrationRuleTable(t *testing.T) {
	cat := loadEmbedded(t)

	for _, from := range []float64{1, 2, 3} {
		m, ok := cat.Migration("n8n-nodes-base.httpRequest", from)
		require.True(t, ok, "httpRequest v%v should have a migration", from)
		assert.Equal(t, 4.2, m.ToVersion)
	}

	_, ok := cat.Migration("n8n-nodes-base.httpRequest", 4)
	assert.False(t, ok, "supported versions carry no migration")

	m, ok := cat.Migration("n8n-nodes-base.if", 1)
	require.True(t, ok)
	assert.Equal(t, 2.0, m.ToVersion)
}

func TestCollapseHTTPRequestParameters(t *testing.T) {
	out := collapseHTTPRequestParameters(map[string]any{
		"url":            "https://example.test",
		"method":         "POST",
		"jsonParameters": true,
		"bodyParametersJson": map[string]any{
			"key": "value",
		},
	})
	assert.Equal(t, map[string]any{
		"url":     "https://example.test",
		"method":  "POST",
		"options": map[string]any{},
	}, out)
}

func TestStructureIfConditions(t *testing.T) {
	out := structureIfConditions(map[string]any{
		"conditions": map[string]any{
			"string": []any{
				map[string]any{"value1": "={{ $json.status }}", "value2": "paid", "operation": "equals"},
			},
			"number": []any{
				map[string]any{"value1": 5.0, "value2": 3.0, "operation": "larger"},
			},
		},
	})

	conds, ok := out["conditions"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "and", conds["combinator"])
	assert.Equal(t, map[string]any{
		"caseSensitive":  true,
		"typeValidation": "strict",
	}, conds["options"])

	list, ok := conds["conditions"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)

	first := list[0].(map[string]any)
	assert.Equal(t, "paid", first["rightValue"])
	assert.Equal(t, map[string]any{"type": "string", "operation": "equals"}, first["operator"])

	second := list[1].(map[string]any)
	assert.Equal(t, map[string]any{"type": "number", "operation": "larger"}, second["operator"])
}

func TestProviderLoadsExactlyOnce(t *testing.T) {
	src := &countingSource{}
	p := NewProvider(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Load(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.calls)
	cat, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestProviderReloadSwapsAtomically(t *testing.T) {
	src := &countingSource{}
	p := NewProvider(src)
	require.NoError(t, p.Load(context.Background()))

	before, err := p.Current()
	require.NoError(t, err)

	require.NoError(t, p.Reload(context.Background()))
	after, err := p.Current()
	require.NoError(t, err)

	assert.NotSame(t, before, after, "reload must swap the whole reference")
	assert.Equal(t, 1, before.Len(), "old reference stays valid for in-flight runs")
}

func TestProviderCurrentBeforeLoad(t *testing.T) {
	p := NewProvider(&countingSource{})
	_, err := p.Current()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSource) Load(ctx context.Context) (*Catalog, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return New([]NodeTypeSchema{
		{CanonicalType: "n8n-nodes-base.noOp", DefaultVersion: 1, ValidVersions: []float64{1}},
	})
}
