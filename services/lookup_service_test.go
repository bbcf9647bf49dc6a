package services

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/educenter-backend/models"
)

func TestLookupCreateUniqueByName(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubjectService(db)

	subject, err := svc.Create(testCtx, LookupInput{Name: ptr("Mathematics"), Image: ptr("https://cdn.example.com/m.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/m.png", subject.Image)

	_, err = svc.Create(testCtx, LookupInput{Name: ptr("MATHEMATICS")})
	requireMessages(t, err, "This subject name already exists")

	_, err = svc.Create(testCtx, LookupInput{})
	requireMessages(t, err, "name is required")

	renamed, err := svc.Update(testCtx, subject.ID, LookupInput{Name: ptr("Algebra")})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", renamed.Name)

	_, err = svc.Update(testCtx, 999, LookupInput{Name: ptr("Geometry")})
	requireStatus(t, http.StatusNotFound, err)
	assert.Equal(t, "Subject not found", err.Error())
}

func TestResourceCategoryNameLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewResourceCategoryService(db)

	_, err := svc.Create(testCtx, LookupInput{Name: ptr(strings.Repeat("x", 51))})
	requireMessages(t, err, "name must be at most 50 characters")
}

func TestRegionIgnoresImage(t *testing.T) {
	db := newTestDB(t)
	region, err := NewRegionService(db).Create(testCtx, LookupInput{Name: ptr("Namangan"), Image: ptr("https://x.example.com/a.png")})
	require.NoError(t, err)
	assert.Equal(t, "Namangan", region.Name)
}

func TestRegionDeleteRefusedWhileUsed(t *testing.T) {
	db := newTestDB(t)
	svc := NewRegionService(db)
	used := seedRegion(t, db, "Fergana")
	free := seedRegion(t, db, "Andijan")
	ceo := seedUser(t, db, models.RoleCEO)
	seedCenter(t, db, ceo.ID, used.ID, "Fergana Center")

	requireMessages(t, svc.Delete(testCtx, used.ID), "Region is in use and cannot be deleted")
	assert.EqualValues(t, 2, count(t, db, &models.Region{}, ""))

	require.NoError(t, svc.Delete(testCtx, free.ID))
	requireStatus(t, http.StatusNotFound, svc.Delete(testCtx, free.ID))
}

func TestSubjectDeleteUnlinks(t *testing.T) {
	db := newTestDB(t)
	region := seedRegion(t, db, "Jizzakh")
	ceo := seedUser(t, db, models.RoleCEO)
	center := seedCenter(t, db, ceo.ID, region.ID, "Linked Center")
	branch := seedBranch(t, db, center.ID, region.ID, "Linked Branch")
	doomed := seedSubject(t, db, "Chemistry")
	kept := seedSubject(t, db, "Physics")
	require.NoError(t, replaceCenterLinks(db, center.ID, &[]uint{doomed.ID, kept.ID}, nil))
	require.NoError(t, replaceBranchLinks(db, branch.ID, &[]uint{doomed.ID}, nil))

	require.NoError(t, NewSubjectService(db).Delete(testCtx, doomed.ID))

	assert.EqualValues(t, 0, count(t, db, &models.EduCenterSubject{}, "subject_id = ?", doomed.ID))
	assert.EqualValues(t, 0, count(t, db, &models.BranchSubject{}, ""))
	assert.EqualValues(t, 1, count(t, db, &models.EduCenterSubject{}, "subject_id = ?", kept.ID))
}

func TestResourceCategoryDeleteRefusedWhileUsed(t *testing.T) {
	db := newTestDB(t)
	svc := NewResourceCategoryService(db)
	category, err := svc.Create(testCtx, LookupInput{Name: ptr("Books")})
	require.NoError(t, err)
	user := seedUser(t, db, models.RoleUser)
	require.NoError(t, db.Create(&models.Resource{Name: "Go Book", CategoryID: category.ID, UserID: user.ID}).Error)

	requireMessages(t, svc.Delete(testCtx, category.ID), "Resource category is in use and cannot be deleted")
}
