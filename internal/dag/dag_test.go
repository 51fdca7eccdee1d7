package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	g := New()
	require.NotNil(t, g)
	assert.Zero(t, g.Len())
}

func TestAddNode(t *testing.T) {
	t.Parallel()

	g := New()
	g.AddNode("program.log_dir")
	assert.Equal(t, 1, g.Len())
	assert.True(t, g.HasNode("program.log_dir"))

	g.AddNode("program.log_dir") // idempotent
	assert.Equal(t, 1, g.Len())

	g.AddNode("trainer.default_root_dir")
	assert.Equal(t, 2, g.Len())
	assert.False(t, g.HasNode("missing"))
}

func TestAddEdge(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))

		deps, err := g.Dependencies("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, deps)
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		g := New()
		g.AddNode("a")

		assert.ErrorContains(t, g.AddEdge("dne", "a"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("a", "dne"), "destination node not found")

		err := g.AddEdge("a", "a")
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"a"}, cycle.Members)
	})
}

func TestDetectCycles(t *testing.T) {
	t.Parallel()

	t.Run("empty graph", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, New().DetectCycles())
	})

	t.Run("valid dag", func(t *testing.T) {
		t.Parallel()
		g := New()
		for _, id := range []string{"a", "b", "c", "d"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c")) // transitive edge
		require.NoError(t, g.AddEdge("c", "d"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("direct cycle", func(t *testing.T) {
		t.Parallel()
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		err := g.DetectCycles()
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.ElementsMatch(t, []string{"a", "b"}, cycle.Members)
	})

	t.Run("longer cycle reports only cycle members", func(t *testing.T) {
		t.Parallel()
		g := New()
		for _, id := range []string{"entry", "a", "b", "c"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("a", "entry")) // entry depends on the cycle
		require.NoError(t, g.AddEdge("b", "a"))
		require.NoError(t, g.AddEdge("c", "b"))
		require.NoError(t, g.AddEdge("a", "c"))

		err := g.DetectCycles()
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, cycle.Members)
		assert.NotContains(t, cycle.Members, "entry")
	})
}

func TestCycleErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `self-referential dependency on "a"`,
		(&CycleError{Members: []string{"a"}}).Error())
	assert.Equal(t, "dependency cycle: a -> b -> a",
		(&CycleError{Members: []string{"a", "b"}}).Error())
}

func TestTopologicalOrder(t *testing.T) {
	t.Parallel()

	t.Run("orders dependencies first", func(t *testing.T) {
		t.Parallel()
		g := New()
		for _, id := range []string{"z", "m", "a"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("z", "m")) // m depends on z
		require.NoError(t, g.AddEdge("m", "a")) // a depends on m

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "m", "a"}, order)
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		t.Parallel()
		g := New()
		for _, id := range []string{"c", "a", "b"} {
			g.AddNode(id)
		}

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("diamond", func(t *testing.T) {
		t.Parallel()
		g := New()
		for _, id := range []string{"root", "left", "right", "sink"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("root", "left"))
		require.NoError(t, g.AddEdge("root", "right"))
		require.NoError(t, g.AddEdge("left", "sink"))
		require.NoError(t, g.AddEdge("right", "sink"))

		order, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "left", "right", "sink"}, order)
	})

	t.Run("cycle yields CycleError", func(t *testing.T) {
		t.Parallel()
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "a"))

		_, err := g.TopologicalOrder()
		var cycle *CycleError
		require.ErrorAs(t, err, &cycle)
	})
}
