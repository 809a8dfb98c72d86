package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshim/storyweaver/internal/project"
	"github.com/yshim/storyweaver/pkg/types"
)

// testEngine opens a search engine inside a fresh project.
func testEngine(t *testing.T) *Engine {
	t.Helper()
	path, err := project.Create("Test Story", "fantasy", "x", t.TempDir())
	require.NoError(t, err)

	engine, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func seedCharacter(name string, role types.Role, backstory string) *types.Character {
	return &types.Character{
		Basics:    types.Basics{Name: name, Role: role},
		Backstory: &types.Backstory{Summary: backstory},
	}
}

func TestEngine(t *testing.T) {
	t.Run("index and search", func(t *testing.T) {
		engine := testEngine(t)

		require.NoError(t, engine.IndexCharacter(seedCharacter("Alex Chen", types.RoleProtagonist, "grew up in a lighthouse by the northern sea")))
		require.NoError(t, engine.IndexCharacter(seedCharacter("Mia", types.RoleAntagonist, "raised in the desert capital")))

		results, err := engine.Search("lighthouse", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Alex Chen", results[0].Name)
		assert.Equal(t, "protagonist", results[0].Role)
		assert.Contains(t, results[0].Snippet, "**lighthouse**")
	})

	t.Run("stemming matches word forms", func(t *testing.T) {
		engine := testEngine(t)

		require.NoError(t, engine.IndexCharacter(seedCharacter("Mia", types.RoleSupporting, "loves sailing across stormy waters")))

		results, err := engine.Search("sail", 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("reindexing replaces stale content", func(t *testing.T) {
		engine := testEngine(t)

		require.NoError(t, engine.IndexCharacter(seedCharacter("Alex", types.RoleProtagonist, "a farmer")))
		require.NoError(t, engine.IndexCharacter(seedCharacter("Alex", types.RoleProtagonist, "a sailor")))

		results, err := engine.Search("farmer", 10)
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = engine.Search("sailor", 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("remove", func(t *testing.T) {
		engine := testEngine(t)

		require.NoError(t, engine.IndexCharacter(seedCharacter("Alex", types.RoleProtagonist, "a farmer")))
		require.NoError(t, engine.Remove("Alex"))

		count, err := engine.Count()
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("reindex rebuilds from scratch", func(t *testing.T) {
		engine := testEngine(t)

		require.NoError(t, engine.IndexCharacter(seedCharacter("Stale", types.RoleBackground, "gone")))

		fresh := []*types.Character{
			seedCharacter("Alex", types.RoleProtagonist, "a farmer"),
			seedCharacter("Mia", types.RoleAntagonist, "a schemer"),
		}
		require.NoError(t, engine.Reindex(fresh))

		count, err := engine.Count()
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		results, err := engine.Search("gone", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("operator characters are stripped", func(t *testing.T) {
		engine := testEngine(t)

		require.NoError(t, engine.IndexCharacter(seedCharacter("Alex", types.RoleProtagonist, "a farmer")))

		results, err := engine.Search(`"farmer"*^:-`, 10)
		require.NoError(t, err)
		assert.Len(t, results, 1, "stripped query still matches")
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		engine := testEngine(t)

		results, err := engine.Search(`"*^:()-`, 10)
		require.NoError(t, err)
		assert.Nil(t, results)
	})

	t.Run("survives close and reopen", func(t *testing.T) {
		path, err := project.Create("Persistent", "fantasy", "x", t.TempDir())
		require.NoError(t, err)

		engine, err := Open(path)
		require.NoError(t, err)
		require.NoError(t, engine.IndexCharacter(seedCharacter("Alex", types.RoleProtagonist, "a farmer")))
		require.NoError(t, engine.Close())

		reopened, err := Open(path)
		require.NoError(t, err)
		defer reopened.Close()

		results, err := reopened.Search("farmer", 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	})
}

func TestFlatten(t *testing.T) {
	c := &types.Character{
		Basics: types.Basics{Name: "Alex", Gender: "female", Role: types.RoleProtagonist},
		Appearance: &types.Appearance{
			Hair:                &types.Hair{Color: "black"},
			DistinctiveFeatures: []string{"scar"},
		},
		Personality: &types.Personality{
			PrimaryTraits: []string{"brave"},
			SpeakingStyle: "blunt",
		},
		Relationships: []types.Relationship{
			{TargetCharacter: "Mia", Type: types.RelFriend, Dynamic: "old friends"},
		},
	}

	text := flatten(c)
	for _, want := range []string{"Alex", "female", "protagonist", "black", "scar", "brave", "blunt", "Mia", "old friends"} {
		assert.Contains(t, text, want)
	}
}

func TestSanitizeQuery(t *testing.T) {
	assert.Equal(t, "farmer and sailor", sanitizeQuery(`"farmer"  and* (sailor)`))
	assert.Equal(t, "", sanitizeQuery(`"*^:()-`))
	assert.Equal(t, "plain words", sanitizeQuery("plain words"))
}
