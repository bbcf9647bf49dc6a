package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/educenter-backend/models"
)

func TestAverageStar(t *testing.T) {
	assert.Equal(t, 4.0, AverageStar(5+3+4, 3))
	assert.Equal(t, 0.0, AverageStar(0, 0))
	assert.Equal(t, 3.5, AverageStar(7, 2))
	assert.Equal(t, 3.3, AverageStar(10, 3))
	assert.Equal(t, 4.7, AverageStar(14, 3))
}

func TestAggregatorCounts(t *testing.T) {
	db := newTestDB(t)
	region := seedRegion(t, db, "Bukhara")
	ceo := seedUser(t, db, models.RoleCEO)
	alice := seedUser(t, db, models.RoleUser)
	bob := seedUser(t, db, models.RoleUser)

	center := seedCenter(t, db, ceo.ID, region.ID, "Rated Center")
	empty := seedCenter(t, db, ceo.ID, region.ID, "Quiet Center")
	branch := seedBranch(t, db, center.ID, region.ID, "Rated Branch")
	seedBranch(t, db, center.ID, region.ID, "Second Branch")

	for _, star := range []int{5, 3, 4} {
		seedComment(t, db, alice.ID, &center.ID, nil, star)
	}
	// Branch comments do not count towards the center.
	seedComment(t, db, bob.ID, nil, &branch.ID, 1)

	for _, like := range []models.Like{
		{UserID: alice.ID, EduID: &center.ID},
		{UserID: bob.ID, EduID: &center.ID},
		{UserID: alice.ID, BranchID: &branch.ID},
	} {
		require.NoError(t, db.Omit(clause.Associations).Create(&like).Error)
	}

	agg := NewAggregator(db)

	stats, err := agg.EduCenters(testCtx, []uuid.UUID{center.ID, empty.ID})
	require.NoError(t, err)
	assert.Equal(t, CenterStats{BranchCount: 2, LikeCount: 2, AverageStar: 4.0}, stats[center.ID])
	assert.Equal(t, CenterStats{}, stats[empty.ID])

	branchStats, err := agg.Branches(testCtx, []uuid.UUID{branch.ID})
	require.NoError(t, err)
	assert.Equal(t, BranchStats{LikeCount: 1, AverageStar: 1.0}, branchStats[branch.ID])

	none, err := agg.EduCenters(testCtx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetDecoratesCenterAndBranches(t *testing.T) {
	db := newTestDB(t)
	region := seedRegion(t, db, "Khiva")
	ceo := seedUser(t, db, models.RoleCEO)
	user := seedUser(t, db, models.RoleUser)
	center := seedCenter(t, db, ceo.ID, region.ID, "Decorated Center")
	branch := seedBranch(t, db, center.ID, region.ID, "Decorated Branch")
	seedComment(t, db, user.ID, &center.ID, nil, 5)
	seedComment(t, db, user.ID, &center.ID, nil, 4)
	seedComment(t, db, user.ID, nil, &branch.ID, 2)

	svc := NewEduCenterService(db, NewGate(db, nil), NewAggregator(db))
	got, err := svc.Get(testCtx, center.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 1, got.BranchCount)
	assert.Equal(t, 4.5, got.AverageStar)
	require.Len(t, got.Branches, 1)
	assert.Equal(t, 2.0, got.Branches[0].AverageStar)
	require.Len(t, got.Comments, 2)
	require.NotNil(t, got.Comments[0].User)
	assert.Equal(t, user.Fullname, got.Comments[0].User.Fullname)
}
