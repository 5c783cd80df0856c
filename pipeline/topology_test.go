package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	langextract "github.com/avalon-data/langextract"
)

func TestNewTopologySingleLayerForIndependentSteps(t *testing.T) {
	steps := []Step{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	topo, err := NewTopology(steps)
	require.NoError(t, err)
	require.Len(t, topo.Layers, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, topo.Layers[0])
}

func TestNewTopologyOrdersLayersByDependency(t *testing.T) {
	steps := []Step{
		{ID: "extract"},
		{ID: "classify", DependsOn: []string{"extract"}},
		{ID: "summarize", DependsOn: []string{"classify"}},
	}
	topo, err := NewTopology(steps)
	require.NoError(t, err)
	require.Len(t, topo.Layers, 3)
	assert.Equal(t, []string{"extract"}, topo.Layers[0])
	assert.Equal(t, []string{"classify"}, topo.Layers[1])
	assert.Equal(t, []string{"summarize"}, topo.Layers[2])
}

func TestNewTopologyGroupsIndependentStepsInSameLayer(t *testing.T) {
	steps := []Step{
		{ID: "extract"},
		{ID: "people", DependsOn: []string{"extract"}},
		{ID: "places", DependsOn: []string{"extract"}},
	}
	topo, err := NewTopology(steps)
	require.NoError(t, err)
	require.Len(t, topo.Layers, 2)
	assert.Equal(t, []string{"extract"}, topo.Layers[0])
	assert.ElementsMatch(t, []string{"people", "places"}, topo.Layers[1])
}

func TestNewTopologyRejectsCycles(t *testing.T) {
	steps := []Step{
		{ID: "a", DependsOn: []string{"b"}},
		{ID: "b", DependsOn: []string{"a"}},
	}
	_, err := NewTopology(steps)
	assert.ErrorIs(t, err, langextract.ErrCyclicDependency)
}

func TestNewTopologyRejectsUnknownDependency(t *testing.T) {
	steps := []Step{{ID: "a", DependsOn: []string{"ghost"}}}
	_, err := NewTopology(steps)
	assert.Error(t, err)
}

func TestTopologyOrderCoversEveryStepOnce(t *testing.T) {
	steps := []Step{
		{ID: "a"},
		{ID: "b", DependsOn: []string{"a"}},
		{ID: "c", DependsOn: []string{"a"}},
		{ID: "d", DependsOn: []string{"b", "c"}},
	}
	topo, err := NewTopology(steps)
	require.NoError(t, err)
	assert.Len(t, topo.Order(), 4)
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, topo.Order())
}

func TestTopologyStepLookup(t *testing.T) {
	steps := []Step{{ID: "a", Prompt: "find things"}}
	topo, err := NewTopology(steps)
	require.NoError(t, err)

	s, ok := topo.Step("a")
	require.True(t, ok)
	assert.Equal(t, "find things", s.Prompt)

	_, ok = topo.Step("missing")
	assert.False(t, ok)
}
