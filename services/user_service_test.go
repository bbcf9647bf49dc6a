package services

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/educenter-backend/models"
	"github.com/vnkhanh/educenter-backend/utils"
)

func TestUserUpdateRoleRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewGate(db, nil))
	user := seedUser(t, db, models.RoleUser)
	admin := seedUser(t, db, models.RoleAdmin)
	superadmin := seedUser(t, db, models.RoleSuperAdmin)

	ceo := models.RoleCEO
	_, err := svc.UpdateMe(testCtx, actorOf(user), UserUpdateInput{Role: &ceo})
	requireStatus(t, http.StatusForbidden, err)
	assert.Equal(t, "You cannot update role", err.Error())

	super := models.RoleSuperAdmin
	_, err = svc.Update(testCtx, actorOf(admin), user.ID, UserUpdateInput{Role: &super})
	requireStatus(t, http.StatusForbidden, err)

	promoted, err := svc.Update(testCtx, actorOf(admin), user.ID, UserUpdateInput{Role: &ceo})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCEO, promoted.Role)

	promoted, err = svc.Update(testCtx, actorOf(superadmin), user.ID, UserUpdateInput{Role: &super})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, promoted.Role)

	// A superadmin account is out of reach for admins.
	root := seedUser(t, db, models.RoleSuperAdmin)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", root.ID).
		Update("password", mustHash(t, "root-pass")).Error)

	demote := models.RoleUser
	_, err = svc.Update(testCtx, actorOf(admin), root.ID, UserUpdateInput{Role: &demote})
	requireStatus(t, http.StatusForbidden, err)
	assert.Equal(t, "Only a superadmin can modify a superadmin account", err.Error())

	_, err = svc.Update(testCtx, actorOf(admin), root.ID, UserUpdateInput{Password: ptr("stolen-pass")})
	requireStatus(t, http.StatusForbidden, err)

	requireStatus(t, http.StatusForbidden, svc.Delete(testCtx, actorOf(admin), root.ID))

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", root.ID).Error)
	assert.Equal(t, models.RoleSuperAdmin, stored.Role)
	assert.True(t, utils.CheckPassword(stored.Password, "root-pass"))

	_, err = svc.UpdateMe(testCtx, actorOf(root), UserUpdateInput{Fullname: ptr("Root Account")})
	require.NoError(t, err)
	demoted, err := svc.Update(testCtx, actorOf(superadmin), root.ID, UserUpdateInput{Role: &demote})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, demoted.Role)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestUserUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewGate(db, nil))
	region := seedRegion(t, db, "Bukhara")
	user := seedUser(t, db, models.RoleUser)
	other := seedUser(t, db, models.RoleUser)

	_, err := svc.Update(testCtx, actorOf(other), user.ID, UserUpdateInput{Image: ptr("https://x.example.com/me.png")})
	requireStatus(t, http.StatusForbidden, err)

	_, err = svc.UpdateMe(testCtx, actorOf(user), UserUpdateInput{Email: ptr(other.Email), Fullname: ptr(other.Fullname)})
	requireMessages(t, err, "Email must be unique", "Fullname must be unique")

	// Keeping one's own values is not a conflict.
	updated, err := svc.UpdateMe(testCtx, actorOf(user), UserUpdateInput{
		Email:    ptr(user.Email),
		RegionID: &region.ID,
		Password: ptr("rotated-pass"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Region)
	assert.Equal(t, "Bukhara", updated.Region.Name)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, utils.CheckPassword(stored.Password, "rotated-pass"))

	_, err = svc.UpdateMe(testCtx, actorOf(user), UserUpdateInput{RegionID: ptr(uint(999))})
	requireStatus(t, http.StatusNotFound, err)

	page, err := svc.List(testCtx, url.Values{"region_id": {"1"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)
}

func TestUserDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, NewGate(db, nil))
	region := seedRegion(t, db, "Samarkand")
	ceo := seedUser(t, db, models.RoleCEO)
	visitor := seedUser(t, db, models.RoleUser)
	center := seedCenter(t, db, ceo.ID, region.ID, "Owned Center")
	seedBranch(t, db, center.ID, region.ID, "Owned Branch")
	seedComment(t, db, visitor.ID, &center.ID, nil, 5)
	seedComment(t, db, ceo.ID, nil, nil, 3)
	require.NoError(t, db.Create(&models.Session{UserID: ceo.ID, IPID: "127.0.0.1"}).Error)

	requireStatus(t, http.StatusForbidden, svc.Delete(testCtx, actorOf(visitor), ceo.ID))
	require.NoError(t, svc.Delete(testCtx, actorOf(ceo), ceo.ID))

	assert.EqualValues(t, 0, count(t, db, &models.EduCenter{}, ""))
	assert.EqualValues(t, 0, count(t, db, &models.Branch{}, ""))
	assert.EqualValues(t, 0, count(t, db, &models.Comment{}, ""))
	assert.EqualValues(t, 0, count(t, db, &models.Session{}, ""))
	assert.EqualValues(t, 1, count(t, db, &models.User{}, ""))

	_, err := svc.Get(testCtx, ceo.ID)
	requireStatus(t, http.StatusNotFound, err)
}

func TestAdminService(t *testing.T) {
	db := newTestDB(t)
	svc := NewAdminService(db)
	user := seedUser(t, db, models.RoleUser)

	admin, err := svc.Create(testCtx, AdminInput{
		Fullname: "Moderator One",
		Phone:    "+998935550000",
		Email:    "Mod@Example.com",
		Password: "secret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "mod@example.com", admin.Email)

	_, err = svc.Create(testCtx, AdminInput{
		Fullname: "Moderator One",
		Phone:    "+998935550001",
		Email:    "mod2@example.com",
		Password: "secret-pass",
	})
	requireMessages(t, err, "Fullname already exists")

	page, err := svc.List(testCtx, url.Values{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = svc.Get(testCtx, user.ID)
	requireStatus(t, http.StatusNotFound, err)

	// Role changes are ignored here.
	super := models.RoleSuperAdmin
	updated, err := svc.Update(testCtx, admin.ID, UserUpdateInput{Fullname: ptr("Moderator Prime"), Role: &super})
	require.NoError(t, err)
	assert.Equal(t, "Moderator Prime", updated.Fullname)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	requireStatus(t, http.StatusNotFound, svc.Delete(testCtx, user.ID))
	require.NoError(t, svc.Delete(testCtx, admin.ID))
	assert.EqualValues(t, 1, count(t, db, &models.User{}, ""))
}

func TestSessionService(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(db, NewGate(db, nil))
	user := seedUser(t, db, models.RoleUser)
	other := seedUser(t, db, models.RoleUser)
	mine := models.Session{UserID: user.ID, IPID: "10.0.0.1"}
	require.NoError(t, db.Create(&mine).Error)
	require.NoError(t, db.Create(&models.Session{UserID: other.ID, IPID: "10.0.0.2"}).Error)

	page, err := svc.List(testCtx, actorOf(user), url.Values{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, mine.ID, page.Data[0].ID)

	_, err = svc.Delete(testCtx, actorOf(other), mine.ID)
	requireStatus(t, http.StatusForbidden, err)

	deleted, err := svc.Delete(testCtx, actorOf(user), mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", deleted.IPID)
	assert.EqualValues(t, 1, count(t, db, &models.Session{}, ""))
}
