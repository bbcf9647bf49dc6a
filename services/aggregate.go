package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/models"
)

type CenterStats struct {
	BranchCount int64
	LikeCount   int64
	AverageStar float64
}

type BranchStats struct {
	LikeCount   int64
	AverageStar float64
}

type countRow struct {
	ID uuid.UUID
	N  int64
}

type starRow struct {
	ID    uuid.UUID
	N     int64
	Total int64
}

// Aggregator computes the derived counters for rows already fetched.
type Aggregator struct {
	db *gorm.DB
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db}
}

// AverageStar rounds total/n to one decimal; zero comments average to 0.
func AverageStar(total, n int64) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(n)*10) / 10
}

func (a *Aggregator) counts(ctx context.Context, model any, column string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []countRow
	err := a.db.WithContext(ctx).Model(model).
		Select(column+" AS id, COUNT(*) AS n").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.N
	}
	return out, nil
}

func (a *Aggregator) stars(ctx context.Context, column string, ids []uuid.UUID) (map[uuid.UUID]float64, error) {
	var rows []starRow
	err := a.db.WithContext(ctx).Model(&models.Comment{}).
		Select(column+" AS id, COUNT(*) AS n, COALESCE(SUM(star), 0) AS total").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]float64, len(rows))
	for _, r := range rows {
		out[r.ID] = AverageStar(r.Total, r.N)
	}
	return out, nil
}

// EduCenters returns branchCount, likeCount and averageStar per center id.
// averageStar only counts comments left on the center itself.
func (a *Aggregator) EduCenters(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]CenterStats, error) {
	out := make(map[uuid.UUID]CenterStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	branches, err := a.counts(ctx, &models.Branch{}, "edu_id", ids)
	if err != nil {
		return nil, err
	}
	likes, err := a.counts(ctx, &models.Like{}, "edu_id", ids)
	if err != nil {
		return nil, err
	}
	stars, err := a.stars(ctx, "edu_id", ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = CenterStats{BranchCount: branches[id], LikeCount: likes[id], AverageStar: stars[id]}
	}
	return out, nil
}

func (a *Aggregator) Branches(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]BranchStats, error) {
	out := make(map[uuid.UUID]BranchStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	likes, err := a.counts(ctx, &models.Like{}, "branch_id", ids)
	if err != nil {
		return nil, err
	}
	stars, err := a.stars(ctx, "branch_id", ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = BranchStats{LikeCount: likes[id], AverageStar: stars[id]}
	}
	return out, nil
}

// DecorateEduCenters fills the derived fields in place.
func (a *Aggregator) DecorateEduCenters(ctx context.Context, centers []models.EduCenter) error {
	ids := make([]uuid.UUID, len(centers))
	for i := range centers {
		ids[i] = centers[i].ID
	}
	stats, err := a.EduCenters(ctx, ids)
	if err != nil {
		return err
	}
	for i := range centers {
		s := stats[centers[i].ID]
		centers[i].BranchCount = s.BranchCount
		centers[i].LikeCount = s.LikeCount
		centers[i].AverageStar = s.AverageStar
	}
	return nil
}

func (a *Aggregator) DecorateBranches(ctx context.Context, branches []models.Branch) error {
	ids := make([]uuid.UUID, len(branches))
	for i := range branches {
		ids[i] = branches[i].ID
	}
	stats, err := a.Branches(ctx, ids)
	if err != nil {
		return err
	}
	for i := range branches {
		s := stats[branches[i].ID]
		branches[i].LikeCount = s.LikeCount
		branches[i].AverageStar = s.AverageStar
	}
	return nil
}
