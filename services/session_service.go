package services

import (
	"context"
	"net/url"

	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/models"
)

var sessionList = ListSpec{
	SortFields:  map[string]string{"createdAt": "created_at", "updatedAt": "updated_at"},
	DefaultSort: "createdAt",
}

type SessionService struct {
	db   *gorm.DB
	gate *Gate
}

func NewSessionService(db *gorm.DB, gate *Gate) *SessionService {
	return &SessionService{db: db, gate: gate}
}

// List returns the caller's own sessions.
func (s *SessionService) List(ctx context.Context, actor Actor, q url.Values) (*Page[models.Session], error) {
	db := s.db.WithContext(ctx).Model(&models.Session{}).Where("user_id = ?", actor.ID)
	return List[models.Session](db, q, sessionList, nil)
}

// Delete removes a session and returns it.
func (s *SessionService) Delete(ctx context.Context, actor Actor, id uint) (*models.Session, error) {
	if err := s.gate.Authorize(ctx, actor, OpSessionDelete, id); err != nil {
		return nil, err
	}
	var session models.Session
	if err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Session not found")
	}
	if err := s.db.WithContext(ctx).Delete(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}
