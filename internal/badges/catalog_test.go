package badges

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 14, c.Len())

	all := c.All()
	assert.Equal(t, KeyFirstLesson, all[0].Key)
	assert.Equal(t, KeySpeedLearner, all[len(all)-1].Key)

	for _, b := range all {
		assert.True(t, b.Category.Valid(), "badge %s", b.Key)
		assert.Greater(t, b.Points, 0, "badge %s", b.Key)
	}

	manual := map[string]bool{
		KeyCommunityStar: true,
		KeyAITutorFan:    true,
		KeyEarlyBird:     true,
		KeyNightOwl:      true,
		KeySpeedLearner:  true,
	}
	for _, b := range all {
		assert.Equal(t, !manual[b.Key], b.Automatic(), "badge %s", b.Key)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Points = 9999

	b, err := c.Lookup(KeyFirstLesson)
	require.NoError(t, err)
	assert.Equal(t, 10, b.Points)
}

func TestLookup(t *testing.T) {
	c := Default()

	b, err := c.Lookup(KeyStreak7)
	require.NoError(t, err)
	assert.Equal(t, 50, b.Points)
	assert.Equal(t, CategoryStreak, b.Category)

	_, err = c.Lookup("does_not_exist")
	assert.True(t, errors.Is(err, ErrBadgeNotFound))
}

func TestNewCatalogValidation(t *testing.T) {
	t.Run("DuplicateKey", func(t *testing.T) {
		_, err := NewCatalog(
			Badge{Key: "a", Points: 1, Category: CategoryMilestone},
			Badge{Key: "a", Points: 2, Category: CategoryMilestone},
		)
		assert.Error(t, err)
	})
	t.Run("EmptyKey", func(t *testing.T) {
		_, err := NewCatalog(Badge{Points: 1, Category: CategoryMilestone})
		assert.Error(t, err)
	})
	t.Run("NegativePoints", func(t *testing.T) {
		_, err := NewCatalog(Badge{Key: "a", Points: -1, Category: CategoryMilestone})
		assert.Error(t, err)
	})
	t.Run("UnknownCategory", func(t *testing.T) {
		_, err := NewCatalog(Badge{Key: "a", Points: 1, Category: "bogus"})
		assert.Error(t, err)
	})
}

func TestPredicates(t *testing.T) {
	c := Default()
	eligible := func(key string, s Snapshot) bool {
		b, err := c.Lookup(key)
		require.NoError(t, err)
		require.True(t, b.Automatic())
		return b.Eligible(s)
	}

	assert.False(t, eligible(KeyStreak7, Snapshot{MaxStreakDays: 6}))
	assert.True(t, eligible(KeyStreak7, Snapshot{MaxStreakDays: 7}))
	assert.True(t, eligible(KeyStreak3, Snapshot{MaxStreakDays: 3}))
	assert.False(t, eligible(KeyStreak30, Snapshot{MaxStreakDays: 29}))

	assert.False(t, eligible(KeyFirstLesson, Snapshot{}))
	assert.True(t, eligible(KeyFirstLesson, Snapshot{TotalAttempted: 1}))

	assert.True(t, eligible(KeyPerfectScore, Snapshot{PerfectLessonRecorded: true}))
	assert.True(t, eligible(KeyAccuracyMaster, Snapshot{HighAccuracyLessonCount: 1}))
	assert.False(t, eligible(KeyAccuracyMaster, Snapshot{}))

	assert.True(t, eligible(KeySocialSharer, Snapshot{SharesCount: 1}))
	assert.False(t, eligible(KeyProblemSolver, Snapshot{TotalCorrect: 99}))
	assert.True(t, eligible(KeyProblemSolver, Snapshot{TotalCorrect: 100}))
	assert.True(t, eligible(KeySubjectExplorer, Snapshot{SubjectsTried: 3}))
}
