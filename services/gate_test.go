package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/educenter-backend/models"
)

type gateFixture struct {
	gate       *Gate
	owner      models.User
	otherCEO   models.User
	author     models.User
	stranger   models.User
	admin      models.User
	superadmin models.User
	center     models.EduCenter
	branch     models.Branch
}

func newGateFixture(t *testing.T) gateFixture {
	t.Helper()
	db := newTestDB(t)
	region := seedRegion(t, db, "Samarkand")
	f := gateFixture{
		gate:       NewGate(db, nil),
		owner:      seedUser(t, db, models.RoleCEO),
		otherCEO:   seedUser(t, db, models.RoleCEO),
		author:     seedUser(t, db, models.RoleUser),
		stranger:   seedUser(t, db, models.RoleUser),
		admin:      seedUser(t, db, models.RoleAdmin),
		superadmin: seedUser(t, db, models.RoleSuperAdmin),
	}
	f.center = seedCenter(t, db, f.owner.ID, region.ID, "Owned Center")
	f.branch = seedBranch(t, db, f.center.ID, region.ID, "Owned Branch")
	return f
}

func TestGateBranchOwnership(t *testing.T) {
	f := newGateFixture(t)

	tests := []struct {
		name   string
		actor  models.User
		op     Operation
		status int
	}{
		{"owner updates", f.owner, OpBranchUpdate, http.StatusOK},
		{"owner deletes", f.owner, OpBranchDelete, http.StatusOK},
		{"other ceo updates", f.otherCEO, OpBranchUpdate, http.StatusForbidden},
		{"other ceo deletes", f.otherCEO, OpBranchDelete, http.StatusForbidden},
		{"admin updates", f.admin, OpBranchUpdate, http.StatusOK},
		{"superadmin updates", f.superadmin, OpBranchUpdate, http.StatusOK},
		{"superadmin is not listed for delete", f.superadmin, OpBranchDelete, http.StatusForbidden},
		{"plain user", f.author, OpBranchUpdate, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.gate.Authorize(testCtx, actorOf(tt.actor), tt.op, f.branch.ID)
			if tt.status == http.StatusOK {
				assert.NoError(t, err)
				return
			}
			requireStatus(t, tt.status, err)
		})
	}
}

func TestGateRoleCheckRunsFirst(t *testing.T) {
	f := newGateFixture(t)

	err := f.gate.Authorize(testCtx, actorOf(f.author), OpEduCenterDelete, f.center.ID)
	requireStatus(t, http.StatusForbidden, err)
	assert.Equal(t, "Access denied", err.Error())

	err = f.gate.Authorize(testCtx, actorOf(f.otherCEO), OpEduCenterDelete, f.center.ID)
	requireStatus(t, http.StatusForbidden, err)
	assert.Equal(t, errNotOwner.Message, err.Error())
}

func TestGateMissingRowIsNotFound(t *testing.T) {
	f := newGateFixture(t)

	err := f.gate.Authorize(testCtx, actorOf(f.admin), OpBranchUpdate, "00000000-0000-0000-0000-000000000000")
	requireStatus(t, http.StatusNotFound, err)
	assert.Equal(t, "Branch not found", err.Error())

	err = f.gate.Authorize(testCtx, actorOf(f.author), OpCommentUpdate, uint(404))
	requireStatus(t, http.StatusNotFound, err)
}

func TestGateCommentModeration(t *testing.T) {
	f := newGateFixture(t)
	comment := seedComment(t, f.gate.db, f.author.ID, &f.center.ID, nil, 4)

	tests := []struct {
		name   string
		actor  models.User
		op     Operation
		status int
	}{
		{"author edits", f.author, OpCommentUpdate, http.StatusOK},
		{"author deletes", f.author, OpCommentDelete, http.StatusOK},
		{"center ceo cannot edit", f.owner, OpCommentUpdate, http.StatusForbidden},
		{"center ceo deletes", f.owner, OpCommentDelete, http.StatusOK},
		{"other ceo deletes", f.otherCEO, OpCommentDelete, http.StatusForbidden},
		{"stranger edits", f.stranger, OpCommentUpdate, http.StatusForbidden},
		{"admin edits", f.admin, OpCommentUpdate, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.gate.Authorize(testCtx, actorOf(tt.actor), tt.op, comment.ID)
			if tt.status == http.StatusOK {
				assert.NoError(t, err)
				return
			}
			requireStatus(t, tt.status, err)
		})
	}
}

func TestGateFailsClosedWithoutParent(t *testing.T) {
	f := newGateFixture(t)
	comment := seedComment(t, f.gate.db, f.author.ID, nil, &f.branch.ID, 5)
	require.NoError(t, f.gate.db.Delete(&models.Branch{}, "id = ?", f.branch.ID).Error)

	err := f.gate.Authorize(testCtx, actorOf(f.owner), OpCommentDelete, comment.ID)
	requireStatus(t, http.StatusForbidden, err)

	assert.NoError(t, f.gate.Authorize(testCtx, actorOf(f.author), OpCommentDelete, comment.ID))
}

func TestGateRequireOwnerOfParent(t *testing.T) {
	f := newGateFixture(t)

	assert.NoError(t, f.gate.RequireOwner(testCtx, actorOf(f.owner), ResEduCenter, f.center.ID))
	requireStatus(t, http.StatusForbidden, f.gate.RequireOwner(testCtx, actorOf(f.otherCEO), ResEduCenter, f.center.ID))
	requireStatus(t, http.StatusNotFound,
		f.gate.RequireOwner(testCtx, actorOf(f.owner), ResEduCenter, "00000000-0000-0000-0000-000000000000"))
}

func TestGateUnknownOperationIsDenied(t *testing.T) {
	f := newGateFixture(t)

	err := f.gate.Authorize(testCtx, actorOf(f.superadmin), Operation("center.transfer"), nil)
	requireStatus(t, http.StatusForbidden, err)
	assert.False(t, f.gate.Permission(Operation("center.transfer")).Public())
}

func TestPermissionTable(t *testing.T) {
	perms := DefaultPermissions()

	assert.True(t, perms[OpEduCenterList].Public())
	assert.True(t, perms[OpBranchGet].Public())
	assert.False(t, perms[OpEduCenterCreate].Public())
	assert.True(t, perms[OpEduCenterCreate].Admits(models.RoleCEO))
	assert.False(t, perms[OpEduCenterCreate].Admits(models.RoleUser))
	assert.False(t, perms[OpUserDelete].Admits(models.RoleSuperAdmin))
	assert.True(t, perms[OpUserList].Admits(models.RoleSuperAdmin))
	assert.False(t, perms[OpUserList].Admits(models.RoleCEO))

	// Every owned mutation names a resolver the gate knows.
	gate := NewGate(nil, perms)
	for op, p := range perms {
		if p.Owner == "" {
			continue
		}
		_, ok := gate.resolvers[p.Owner]
		assert.True(t, ok, "no resolver for %s", op)
	}
}
