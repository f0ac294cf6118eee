package importer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("missing required header invalidates the whole batch", func(t *testing.T) {
		t.Parallel()
		batch := Parse("notes,status\nsome note,todo\nanother,done")

		preview, err := Classify(SourceTodoist, batch, nil)
		require.NoError(t, err)

		require.Len(t, preview.Rows, 1)
		assert.Equal(t, 1, preview.Rows[0].Line)
		assert.Contains(t, preview.Rows[0].Error, "missing required header")
		assert.Equal(t, ActionSkip, preview.Rows[0].SuggestedAction)
		assert.Equal(t, 0, preview.ValidRows)
		assert.Equal(t, 1, preview.InvalidRows)
	})

	t.Run("blank title is a row-level error", func(t *testing.T) {
		t.Parallel()
		batch := Parse("title,notes\n,orphan note\nBuy milk,")

		preview, err := Classify(SourceTodoist, batch, nil)
		require.NoError(t, err)
		require.Len(t, preview.Rows, 2)

		assert.Equal(t, "missing required title", preview.Rows[0].Error)
		assert.Equal(t, ActionSkip, preview.Rows[0].SuggestedAction)
		assert.Nil(t, preview.Rows[0].DuplicateMatch)

		assert.Empty(t, preview.Rows[1].Error)
		assert.Equal(t, ActionCreate, preview.Rows[1].SuggestedAction)

		assert.Equal(t, 1, preview.ValidRows)
		assert.Equal(t, 1, preview.InvalidRows)
	})

	t.Run("exact duplicate suggests update", func(t *testing.T) {
		t.Parallel()
		existing := Candidate{ID: uuid.New(), Title: "Buy milk"}
		batch := Parse("title\nbuy MILK")

		preview, err := Classify(SourceTodoist, batch, []Candidate{existing})
		require.NoError(t, err)
		require.Len(t, preview.Rows, 1)

		row := preview.Rows[0]
		assert.Equal(t, ActionUpdate, row.SuggestedAction)
		require.NotNil(t, row.DuplicateMatch)
		assert.Equal(t, MatchExact, row.DuplicateMatch.Kind)
		assert.Equal(t, existing.ID, row.DuplicateMatch.ID)
	})

	t.Run("fuzzy duplicate suggests skip", func(t *testing.T) {
		t.Parallel()
		existing := Candidate{ID: uuid.New(), Title: "Buy milkk"}
		batch := Parse("title\nBuy milk")

		preview, err := Classify(SourceTodoist, batch, []Candidate{existing})
		require.NoError(t, err)
		require.Len(t, preview.Rows, 1)

		row := preview.Rows[0]
		assert.Equal(t, ActionSkip, row.SuggestedAction)
		require.NotNil(t, row.DuplicateMatch)
		assert.Equal(t, MatchFuzzy, row.DuplicateMatch.Kind)
	})

	t.Run("no duplicate suggests create", func(t *testing.T) {
		t.Parallel()
		batch := Parse("title\nCompletely new task")

		preview, err := Classify(SourceTodoist, batch, nil)
		require.NoError(t, err)
		require.Len(t, preview.Rows, 1)
		assert.Equal(t, ActionCreate, preview.Rows[0].SuggestedAction)
		assert.Nil(t, preview.Rows[0].DuplicateMatch)
	})

	t.Run("project sources match against project entities", func(t *testing.T) {
		t.Parallel()
		existing := Candidate{ID: uuid.New(), Title: "Home renovation"}
		batch := Parse("title\nhome renovation")

		preview, err := Classify(SourceTrello, batch, []Candidate{existing})
		require.NoError(t, err)
		require.Len(t, preview.Rows, 1)
		require.NotNil(t, preview.Rows[0].DuplicateMatch)
		assert.Equal(t, EntityKindProject, preview.Rows[0].DuplicateMatch.EntityKind)
	})

	t.Run("unknown source errors", func(t *testing.T) {
		t.Parallel()
		_, err := Classify(Source("jira"), Parse("title\nx"), nil)
		assert.Error(t, err)
	})

	t.Run("empty batch yields empty preview", func(t *testing.T) {
		t.Parallel()
		preview, err := Classify(SourceTodoist, Parse("title\n"), nil)
		require.NoError(t, err)
		assert.Empty(t, preview.Rows)
		assert.Equal(t, 0, preview.ValidRows)
		assert.Equal(t, 0, preview.InvalidRows)
	})
}

func TestSourceEntityKind(t *testing.T) {
	t.Parallel()

	kind, err := SourceTodoist.EntityKind()
	require.NoError(t, err)
	assert.Equal(t, EntityKindTask, kind)

	kind, err = SourceAppleNotes.EntityKind()
	require.NoError(t, err)
	assert.Equal(t, EntityKindTask, kind)

	kind, err = SourceTrello.EntityKind()
	require.NoError(t, err)
	assert.Equal(t, EntityKindProject, kind)

	kind, err = SourceNotion.EntityKind()
	require.NoError(t, err)
	assert.Equal(t, EntityKindProject, kind)

	_, err = Source("jira").EntityKind()
	assert.Error(t, err)
}
