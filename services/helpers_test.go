package services

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vnkhanh/educenter-backend/config"
	"github.com/vnkhanh/educenter-backend/models"
)

var testCtx = context.Background()

// newTestDB opens a private in-memory database. One connection keeps the
// schema alive and serializes transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), config.GormConfig("silent"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.Migrate(db))
	return db
}

func ptr[T any](v T) *T { return &v }

func seedRegion(t *testing.T, db *gorm.DB, name string) models.Region {
	t.Helper()
	region := models.Region{Name: name}
	require.NoError(t, db.Create(&region).Error)
	return region
}

func seedUser(t *testing.T, db *gorm.DB, role models.UserRole) models.User {
	t.Helper()
	id := uuid.New()
	user := models.User{
		ID:       id,
		Fullname: "user-" + id.String()[:8],
		Email:    id.String()[:8] + "@example.com",
		Phone:    fmt.Sprintf("+998%09d", id.ID()%1_000_000_000),
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&user).Error)
	return user
}

func seedCenter(t *testing.T, db *gorm.DB, ceo uuid.UUID, regionID uint, name string) models.EduCenter {
	t.Helper()
	center := models.EduCenter{
		Name:        name,
		Phone:       fmt.Sprintf("+99890%07d", uuid.New().ID()%10_000_000),
		Address:     "Amir Temur 1",
		RegionID:    regionID,
		CEOID:       ceo,
		Description: "A test education center",
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&center).Error)
	return center
}

func seedBranch(t *testing.T, db *gorm.DB, eduID uuid.UUID, regionID uint, name string) models.Branch {
	t.Helper()
	branch := models.Branch{
		Name:     name,
		Phone:    fmt.Sprintf("+99891%07d", uuid.New().ID()%10_000_000),
		Address:  "Chilonzor 5",
		RegionID: regionID,
		EduID:    eduID,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&branch).Error)
	return branch
}

func seedSubject(t *testing.T, db *gorm.DB, name string) models.Subject {
	t.Helper()
	subject := models.Subject{Name: name}
	require.NoError(t, db.Create(&subject).Error)
	return subject
}

func seedField(t *testing.T, db *gorm.DB, name string) models.Field {
	t.Helper()
	field := models.Field{Name: name}
	require.NoError(t, db.Create(&field).Error)
	return field
}

func seedComment(t *testing.T, db *gorm.DB, user uuid.UUID, eduID, branchID *uuid.UUID, star int) models.Comment {
	t.Helper()
	comment := models.Comment{Text: "Great place", Star: star, UserID: user, EduID: eduID, BranchID: branchID}
	require.NoError(t, db.Omit(clause.Associations).Create(&comment).Error)
	return comment
}

func count(t *testing.T, db *gorm.DB, model any, where string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func actorOf(u models.User) Actor { return Actor{ID: u.ID, Role: u.Role} }

// requireStatus asserts the HTTP status err maps to.
func requireStatus(t *testing.T, want int, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, StatusOf(err), "error: %v", err)
}

func requireMessages(t *testing.T, err error, want ...string) {
	t.Helper()
	requireStatus(t, http.StatusBadRequest, err)
	var v *ValidationError
	require.ErrorAs(t, err, &v)
	require.Equal(t, want, v.Messages)
}

// captureMailer records sent mail so tests can read OTP codes.
type captureMailer struct {
	mu   sync.Mutex
	sent map[string]string
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{sent: make(map[string]string)}
}

func (m *captureMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[to] = body
	return nil
}

var codePattern = regexp.MustCompile(`<b>(\d+)</b>`)

func (m *captureMailer) code(t *testing.T, to string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	match := codePattern.FindStringSubmatch(m.sent[to])
	require.Len(t, match, 2, "no code mailed to %s", to)
	return match[1]
}
