package importer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDuplicate(t *testing.T) {
	t.Parallel()

	t.Run("exact match wins with score 1.0", func(t *testing.T) {
		t.Parallel()
		exact := Candidate{ID: uuid.New(), Title: "Buy milk"}
		near := Candidate{ID: uuid.New(), Title: "Buy milkk"}

		match := FindDuplicate(EntityKindTask, "buy   MILK!", []Candidate{near, exact})
		require.NotNil(t, match)
		assert.Equal(t, MatchExact, match.Kind)
		assert.Equal(t, exact.ID, match.ID)
		assert.Equal(t, 1.0, match.Score)
		assert.Equal(t, EntityKindTask, match.EntityKind)
	})

	t.Run("best fuzzy candidate above threshold", func(t *testing.T) {
		t.Parallel()
		close := Candidate{ID: uuid.New(), Title: "Buy milkk"}
		far := Candidate{ID: uuid.New(), Title: "Sell bread"}

		match := FindDuplicate(EntityKindTask, "Buy milk", []Candidate{far, close})
		require.NotNil(t, match)
		assert.Equal(t, MatchFuzzy, match.Kind)
		assert.Equal(t, close.ID, match.ID)
		// 2*9/(9+10) rounded to two decimals.
		assert.Equal(t, 0.95, match.Score)
	})

	t.Run("nothing above threshold", func(t *testing.T) {
		t.Parallel()
		candidates := []Candidate{
			{ID: uuid.New(), Title: "Sell bread"},
			{ID: uuid.New(), Title: "Walk the dog"},
		}
		assert.Nil(t, FindDuplicate(EntityKindTask, "Buy milk", candidates))
	})

	t.Run("empty candidate pool", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, FindDuplicate(EntityKindTask, "Buy milk", nil))
	})

	t.Run("empty normalized title never matches", func(t *testing.T) {
		t.Parallel()
		candidates := []Candidate{{ID: uuid.New(), Title: "!!!"}}
		assert.Nil(t, FindDuplicate(EntityKindTask, "???", candidates))
	})

	t.Run("score is rounded to two decimals", func(t *testing.T) {
		t.Parallel()
		candidate := Candidate{ID: uuid.New(), Title: "nighty"}
		// " night " vs " nighty " share 5 of 6+7 bigrams: 10/13 = 0.769...
		match := FindDuplicate(EntityKindProject, "night", []Candidate{candidate})
		require.NotNil(t, match)
		assert.Equal(t, 0.77, match.Score)
		assert.Equal(t, EntityKindProject, match.EntityKind)
	})

	t.Run("score just below threshold is rejected", func(t *testing.T) {
		t.Parallel()
		// " night " vs " nacht " scores 0.5, below the 0.72 threshold.
		candidate := Candidate{ID: uuid.New(), Title: "nacht"}
		assert.Nil(t, FindDuplicate(EntityKindTask, "night", []Candidate{candidate}))
	})

	t.Run("score exactly at the threshold is fuzzy-matched", func(t *testing.T) {
		t.Parallel()
		// 12 and 13 padded bigrams sharing 9: 2*9/(12+13) = 0.72 exactly.
		candidate := Candidate{ID: uuid.New(), Title: "abcdefghixyz"}
		match := FindDuplicate(EntityKindTask, "abcdefghijk", []Candidate{candidate})
		require.NotNil(t, match)
		assert.Equal(t, MatchFuzzy, match.Kind)
		assert.Equal(t, 0.72, match.Score)
	})

	t.Run("score a hair under the threshold is rejected", func(t *testing.T) {
		t.Parallel()
		// 7 and 7 padded bigrams sharing 5: 10/14 = 0.714..., under 0.72.
		candidate := Candidate{ID: uuid.New(), Title: "abcdez"}
		assert.Nil(t, FindDuplicate(EntityKindTask, "abcdef", []Candidate{candidate}))
	})
}
