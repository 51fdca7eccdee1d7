package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/loader"
	"github.com/vk/trainconf/internal/node"
)

func parse(t *testing.T, doc string) *node.Node {
	t.Helper()
	tree, err := loader.Parse([]byte(doc), "test.yaml")
	require.NoError(t, err)
	return tree
}

func value(t *testing.T, tree *node.Node, path string) cty.Value {
	t.Helper()
	n, ok := tree.Lookup(node.ParsePath(path))
	require.True(t, ok, "path %q not found", path)
	require.Equal(t, node.KindScalar, n.Kind)
	return n.Value
}

func TestMergeOverrideWinsAndBaseSurvives(t *testing.T) {
	t.Parallel()

	base := parse(t, "program:\n  seed: 0\n  output_dir: output\n")
	override := parse(t, "program:\n  seed: 5\n")

	merged, err := Merge(base, override)
	require.NoError(t, err)

	assert.Equal(t, cty.NumberIntVal(5), value(t, merged, "program.seed"))
	assert.Equal(t, cty.StringVal("output"), value(t, merged, "program.output_dir"))
}

func TestMergeIsIdempotentForIdenticalLayers(t *testing.T) {
	t.Parallel()

	doc := `
program:
  seed: 0
  output_dir: output
experiment:
  name: test
`
	base := parse(t, doc)
	merged, err := Merge(base, parse(t, doc))
	require.NoError(t, err)

	assert.Equal(t, base.Keys, merged.Keys)
	assert.Equal(t, value(t, base, "program.seed"), value(t, merged, "program.seed"))
	assert.Equal(t, value(t, base, "experiment.name"), value(t, merged, "experiment.name"))
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	t.Parallel()

	base := parse(t, "program:\n  seed: 0\n")
	override := parse(t, "program:\n  seed: 5\n")

	merged, err := Merge(base, override)
	require.NoError(t, err)
	require.NoError(t, merged.Replace(node.ParsePath("program.seed"),
		node.NewScalar(cty.NumberIntVal(9), node.Range{})))

	assert.Equal(t, cty.NumberIntVal(0), value(t, base, "program.seed"))
	assert.Equal(t, cty.NumberIntVal(5), value(t, override, "program.seed"))
}

func TestMergeNewKeysAppendAfterBaseKeys(t *testing.T) {
	t.Parallel()

	base := parse(t, "a: 1\nc: 3\n")
	override := parse(t, "d: 4\nb: 2\n")

	merged, err := Merge(base, override)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d", "b"}, merged.Keys)
}

func TestMergeConflictMappingOverScalar(t *testing.T) {
	t.Parallel()

	base := parse(t, "program: output\n")
	override := parse(t, "program:\n  seed: 5\n")

	_, err := Merge(base, override)
	require.Error(t, err)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "program", conflict.Path.String())
	assert.Equal(t, node.KindScalar, conflict.Base)
	assert.Equal(t, node.KindMapping, conflict.Override)
}

func TestMergeConflictScalarOverMapping(t *testing.T) {
	t.Parallel()

	base := parse(t, "program:\n  seed: 5\n")
	override := parse(t, "program: 7\n")

	_, err := Merge(base, override)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Error(), `cannot merge scalar over mapping at "program"`)
}

func TestMergeScalarReplacesSequence(t *testing.T) {
	t.Parallel()

	base := parse(t, "bands:\n  - B02\n  - B03\n")
	override := parse(t, "bands: all\n")

	merged, err := Merge(base, override)
	require.NoError(t, err)
	assert.Equal(t, cty.StringVal("all"), value(t, merged, "bands"))
}

func TestMergeSequenceReplacesWholesale(t *testing.T) {
	t.Parallel()

	base := parse(t, "bands:\n  - B02\n  - B03\n  - B04\n")
	override := parse(t, "bands:\n  - B08\n")

	merged, err := Merge(base, override)
	require.NoError(t, err)
	bands, ok := merged.Lookup(node.ParsePath("bands"))
	require.True(t, ok)
	require.Len(t, bands.Items, 1)
	assert.Equal(t, cty.StringVal("B08"), bands.Items[0].Value)
}

func TestMergePlaceholderSemantics(t *testing.T) {
	t.Parallel()

	t.Run("override supplies a required value", func(t *testing.T) {
		t.Parallel()
		base := parse(t, "experiment:\n  name: ???\n")
		override := parse(t, "experiment:\n  name: sentinel-run\n")

		merged, err := Merge(base, override)
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("sentinel-run"), value(t, merged, "experiment.name"))
		assert.Empty(t, merged.PlaceholderPaths())
	})

	t.Run("mapping supplies a required section", func(t *testing.T) {
		t.Parallel()
		base := parse(t, "experiment:\n  datamodule: ???\n")
		override := parse(t, "experiment:\n  datamodule:\n    batch_size: 16\n")

		merged, err := Merge(base, override)
		require.NoError(t, err)
		assert.Equal(t, cty.NumberIntVal(16), value(t, merged, "experiment.datamodule.batch_size"))
		assert.Empty(t, merged.PlaceholderPaths())
	})

	t.Run("sequence supplies a required field", func(t *testing.T) {
		t.Parallel()
		base := parse(t, "bands: ???\n")
		override := parse(t, "bands:\n  - B02\n  - B03\n")

		merged, err := Merge(base, override)
		require.NoError(t, err)
		assert.Equal(t, cty.StringVal("B02"), value(t, merged, "bands.0"))
		assert.Empty(t, merged.PlaceholderPaths())
	})

	t.Run("override placeholder keeps concrete base value", func(t *testing.T) {
		t.Parallel()
		base := parse(t, "program:\n  seed: 0\n")
		override := parse(t, "program:\n  seed: ???\n")

		merged, err := Merge(base, override)
		require.NoError(t, err)
		assert.Equal(t, cty.NumberIntVal(0), value(t, merged, "program.seed"))
	})

	t.Run("unsupplied placeholder survives the merge", func(t *testing.T) {
		t.Parallel()
		base := parse(t, "experiment:\n  name: ???\n  task: ???\n")
		override := parse(t, "experiment:\n  name: run\n")

		merged, err := Merge(base, override)
		require.NoError(t, err)
		assert.Equal(t, []string{"experiment.task"}, merged.PlaceholderPaths())
	})
}

func TestMergeReferenceOverridesScalar(t *testing.T) {
	t.Parallel()

	base := parse(t, "program:\n  log_dir: logs\n  output_dir: output\n")
	override := parse(t, "program:\n  log_dir: ${program.output_dir}\n")

	merged, err := Merge(base, override)
	require.NoError(t, err)
	logDir, ok := merged.Lookup(node.ParsePath("program.log_dir"))
	require.True(t, ok)
	assert.Equal(t, node.KindReference, logDir.Kind)
}

func TestMergeWithDottedOverrideLayer(t *testing.T) {
	t.Parallel()

	base := parse(t, "program:\n  seed: 0\n  output_dir: output\n")
	dotted, err := loader.FromDotted([]string{"program.seed=5"})
	require.NoError(t, err)

	merged, err := Merge(base, dotted)
	require.NoError(t, err)
	assert.Equal(t, cty.NumberIntVal(5), value(t, merged, "program.seed"))
	assert.Equal(t, cty.StringVal("output"), value(t, merged, "program.output_dir"))
}
