package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	e := New()
	data := map[string]interface{}{
		"suite":   "smoke-tests",
		"success": false,
		"failed":  2,
	}

	out, err := e.Render("message", `{{ .suite | upper }} {{ if .success }}passed{{ else }}failed ({{ .failed }}){{ end }}`, data)
	require.NoError(t, err)
	assert.Equal(t, "SMOKE-TESTS failed (2)", out)

	out, err = e.Render("defaults", `{{ .branch | default "main" }}`, map[string]interface{}{"branch": ""})
	require.NoError(t, err)
	assert.Equal(t, "main", out)
}

func TestRenderErrors(t *testing.T) {
	e := New()

	_, err := e.Render("broken", "{{ .suite ", nil)
	assert.ErrorContains(t, err, "failed to parse template broken")

	_, err = e.Render("missing", "{{ .nope }}", map[string]interface{}{"suite": "x"})
	assert.ErrorContains(t, err, "failed to render template missing")

	assert.NoError(t, e.Validate("ok", "{{ .suite | quote }}"))
	assert.Error(t, e.Validate("bad", "{{ if }}"))
}

func TestMergeContexts(t *testing.T) {
	merged := MergeContexts(
		map[string]interface{}{"a": 1, "b": 1},
		map[string]interface{}{"b": 2},
		nil,
	)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, merged)
	assert.Equal(t, []string{"a", "b"}, Keys(merged))
}
