package stage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	seq := Sequence()

	assert.Equal(t, []Stage{StageSearch, StageSelect, StageRead, StageProcess, StageValidate}, seq)
}

func TestStage_IsValid(t *testing.T) {
	for _, s := range Sequence() {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, Stage("summarize").IsValid())
}

func TestStage_JSONRoundTrip(t *testing.T) {
	data, err := StageProcess.MarshalJSON()
	require.NoError(t, err)

	var s Stage
	require.NoError(t, s.UnmarshalJSON(data))
	assert.Equal(t, StageProcess, s)

	assert.Error(t, s.UnmarshalJSON([]byte(`"bogus"`)))
}

func TestRegistry_BuiltinsPreloaded(t *testing.T) {
	registry := NewRegistry()

	all := registry.All()
	require.Len(t, all, 5)

	for i, s := range Sequence() {
		assert.Equal(t, s, all[i].Stage)
		require.NoError(t, all[i].Validate())
	}

	search, err := registry.Get(StageSearch)
	require.NoError(t, err)
	assert.Equal(t, "DocumentSearchAgent", search.Speaker)
	assert.Equal(t, HeaderSearch, search.RequiredHeader)

	validate, err := registry.Get(StageValidate)
	require.NoError(t, err)
	assert.Equal(t, "TableValidatorAgent", validate.Speaker)
	assert.Contains(t, validate.Instructions, "# TABLE VALIDATION")
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	registry := NewRegistry()

	override := Persona{
		Stage:          StageSearch,
		Speaker:        "CustomSearcher",
		Duty:           "search",
		RequiredHeader: "# CUSTOM RESULTS",
		Instructions:   "Search differently.",
	}
	require.NoError(t, registry.Register(override))

	got, err := registry.Get(StageSearch)
	require.NoError(t, err)
	assert.Equal(t, "CustomSearcher", got.Speaker)
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	registry := NewRegistry()

	err := registry.Register(Persona{Stage: Stage("bogus")})
	assert.Error(t, err)

	err = registry.Register(Persona{Stage: StageSearch})
	assert.Error(t, err, "missing speaker, header and instructions")
}

func TestRegistry_LoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")

	content := `personas:
  - stage: read
    speaker: DeepReaderAgent
    duty: read harder
    required_header: "# SECURITY CONTROLS ANALYSIS"
    instructions: Extract every control.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	registry := NewRegistry()
	require.NoError(t, registry.LoadFromYAML(path))

	read, err := registry.Get(StageRead)
	require.NoError(t, err)
	assert.Equal(t, "DeepReaderAgent", read.Speaker)

	// Unlisted stages keep their built-in persona.
	search, err := registry.Get(StageSearch)
	require.NoError(t, err)
	assert.Equal(t, "DocumentSearchAgent", search.Speaker)
}

func TestRegistry_LoadFromYAML_Missing(t *testing.T) {
	registry := NewRegistry()
	assert.Error(t, registry.LoadFromYAML(filepath.Join(t.TempDir(), "absent.yaml")))
}
