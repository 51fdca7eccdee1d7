package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/node"
)

func TestFromDotted(t *testing.T) {
	t.Parallel()

	tree, err := FromDotted([]string{
		"program.seed=5",
		"experiment.name=chesapeake-test",
		"trainer.benchmark=false",
	})
	require.NoError(t, err)

	assert.Equal(t, cty.NumberIntVal(5), mustLookup(t, tree, "program.seed").Value)
	assert.Equal(t, cty.StringVal("chesapeake-test"), mustLookup(t, tree, "experiment.name").Value)
	assert.Equal(t, cty.False, mustLookup(t, tree, "trainer.benchmark").Value)
}

func TestFromDottedLastAssignmentWins(t *testing.T) {
	t.Parallel()

	tree, err := FromDotted([]string{"program.seed=1", "program.seed=2"})
	require.NoError(t, err)
	assert.Equal(t, cty.NumberIntVal(2), mustLookup(t, tree, "program.seed").Value)
}

func TestFromDottedReferenceValue(t *testing.T) {
	t.Parallel()

	tree, err := FromDotted([]string{"experiment.datamodule.seed=${program.seed}"})
	require.NoError(t, err)
	assert.Equal(t, node.KindReference, mustLookup(t, tree, "experiment.datamodule.seed").Kind)
}

func TestFromDottedEmptyValueIsNull(t *testing.T) {
	t.Parallel()

	tree, err := FromDotted([]string{"config_file="})
	require.NoError(t, err)
	got := mustLookup(t, tree, "config_file")
	require.Equal(t, node.KindScalar, got.Kind)
	assert.True(t, got.Value.IsNull())
}

func TestFromDottedInvalid(t *testing.T) {
	t.Parallel()

	_, err := FromDotted([]string{"no-equals-sign"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected path.to.field=value")

	_, err = FromDotted([]string{"=5"})
	require.Error(t, err)
}

func TestFromDottedEmptyList(t *testing.T) {
	t.Parallel()

	tree, err := FromDotted(nil)
	require.NoError(t, err)
	assert.Empty(t, tree.Keys)
}
