package services

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/models"
)

type centerFixture struct {
	db      *gorm.DB
	svc     *EduCenterService
	region  models.Region
	ceo     models.User
	admin   models.User
	subject []models.Subject
	field   []models.Field
}

func newCenterFixture(t *testing.T) centerFixture {
	t.Helper()
	db := newTestDB(t)
	f := centerFixture{
		db:     db,
		svc:    NewEduCenterService(db, NewGate(db, nil), NewAggregator(db)),
		region: seedRegion(t, db, "Tashkent"),
		ceo:    seedUser(t, db, models.RoleCEO),
		admin:  seedUser(t, db, models.RoleAdmin),
	}
	for i := 1; i <= 3; i++ {
		f.subject = append(f.subject, seedSubject(t, db, fmt.Sprintf("Subject %d", i)))
		f.field = append(f.field, seedField(t, db, fmt.Sprintf("Field %d", i)))
	}
	return f
}

func (f centerFixture) input(name, phone string) EduCenterInput {
	return EduCenterInput{
		Name:        ptr(name),
		Phone:       ptr(phone),
		Image:       ptr("https://cdn.example.com/center.png"),
		Address:     ptr("Mustaqillik 12"),
		RegionID:    ptr(f.region.ID),
		Description: ptr("Courses for every level"),
	}
}

func subjectIDs(subjects []models.Subject) []uint {
	ids := make([]uint, len(subjects))
	for i, s := range subjects {
		ids[i] = s.ID
	}
	return ids
}

func TestCreateEduCenterWithLinks(t *testing.T) {
	f := newCenterFixture(t)
	in := f.input("Alpha Academy", "+998901112233")
	in.Subjects = &[]uint{f.subject[0].ID, f.subject[1].ID, f.subject[0].ID}
	in.Fields = &[]uint{f.field[2].ID}

	center, err := f.svc.Create(testCtx, actorOf(f.ceo), in)
	require.NoError(t, err)

	assert.Equal(t, f.ceo.ID, center.CEOID)
	assert.ElementsMatch(t, []uint{f.subject[0].ID, f.subject[1].ID}, subjectIDs(center.Subjects))
	require.Len(t, center.Fields, 1)
	assert.Equal(t, f.field[2].ID, center.Fields[0].ID)
	require.NotNil(t, center.Region)
	assert.Equal(t, "Tashkent", center.Region.Name)
}

func TestCreateEduCenterRejectsDuplicates(t *testing.T) {
	f := newCenterFixture(t)
	_, err := f.svc.Create(testCtx, actorOf(f.ceo), f.input("Alpha Academy", "+998901112233"))
	require.NoError(t, err)

	_, err = f.svc.Create(testCtx, actorOf(f.ceo), f.input("alpha academy", "+998909999999"))
	requireMessages(t, err, "This education center name already exists")

	_, err = f.svc.Create(testCtx, actorOf(f.ceo), f.input("Beta Academy", "+998901112233"))
	requireMessages(t, err, "This education center phone already exists")

	assert.EqualValues(t, 1, count(t, f.db, &models.EduCenter{}, ""))
}

func TestCreateEduCenterReportsEveryUnknownLink(t *testing.T) {
	f := newCenterFixture(t)
	in := f.input("Alpha Academy", "+998901112233")
	in.Subjects = &[]uint{f.subject[0].ID, 901, 902}
	in.Fields = &[]uint{903}

	_, err := f.svc.Create(testCtx, actorOf(f.ceo), in)
	requireStatus(t, http.StatusNotFound, err)
	assert.Equal(t, "Subjects not found: 901, 902; Fields not found: 903", err.Error())

	assert.EqualValues(t, 0, count(t, f.db, &models.EduCenter{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &models.EduCenterSubject{}, ""))
}

func TestCreateEduCenterOwnerRules(t *testing.T) {
	f := newCenterFixture(t)
	other := seedUser(t, f.db, models.RoleCEO)
	plain := seedUser(t, f.db, models.RoleUser)

	in := f.input("Alpha Academy", "+998901112233")
	in.CEOID = &other.ID
	_, err := f.svc.Create(testCtx, actorOf(f.ceo), in)
	requireStatus(t, http.StatusForbidden, err)

	_, err = f.svc.Create(testCtx, actorOf(f.admin), f.input("Alpha Academy", "+998901112233"))
	requireMessages(t, err, "CEO_id is required")

	in = f.input("Alpha Academy", "+998901112233")
	in.CEOID = &plain.ID
	_, err = f.svc.Create(testCtx, actorOf(f.admin), in)
	requireStatus(t, http.StatusNotFound, err)
	assert.Equal(t, "CEO not found", err.Error())

	in.CEOID = &other.ID
	center, err := f.svc.Create(testCtx, actorOf(f.admin), in)
	require.NoError(t, err)
	assert.Equal(t, other.ID, center.CEOID)
}

func TestCreateEduCenterValidatesRequiredAndParents(t *testing.T) {
	f := newCenterFixture(t)

	_, err := f.svc.Create(testCtx, actorOf(f.ceo), EduCenterInput{Name: ptr("Alpha Academy")})
	requireMessages(t, err,
		"address is required", "description is required", "image is required",
		"phone is required", "region_id is required")

	in := f.input("Alpha Academy", "+998901112233")
	in.RegionID = ptr(uint(999))
	_, err = f.svc.Create(testCtx, actorOf(f.ceo), in)
	requireStatus(t, http.StatusNotFound, err)
	assert.Equal(t, "Region not found", err.Error())
}

func TestUpdateEduCenter(t *testing.T) {
	f := newCenterFixture(t)
	in := f.input("Alpha Academy", "+998901112233")
	in.Subjects = &[]uint{f.subject[0].ID, f.subject[1].ID}
	center, err := f.svc.Create(testCtx, actorOf(f.ceo), in)
	require.NoError(t, err)

	// Keeping its own name is not a conflict; links stay untouched when omitted.
	updated, err := f.svc.Update(testCtx, actorOf(f.ceo), center.ID, EduCenterInput{
		Name:    ptr("Alpha Academy"),
		Address: ptr("Navoi 7"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Navoi 7", updated.Address)
	assert.Len(t, updated.Subjects, 2)

	updated, err = f.svc.Update(testCtx, actorOf(f.ceo), center.ID, EduCenterInput{
		Subjects: &[]uint{f.subject[2].ID},
		Fields:   &[]uint{},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{f.subject[2].ID}, subjectIDs(updated.Subjects))
	assert.Empty(t, updated.Fields)
	assert.EqualValues(t, 1, count(t, f.db, &models.EduCenterSubject{}, "edu_center_id = ?", center.ID))
}

func TestUpdateEduCenterByStranger(t *testing.T) {
	f := newCenterFixture(t)
	center, err := f.svc.Create(testCtx, actorOf(f.ceo), f.input("Alpha Academy", "+998901112233"))
	require.NoError(t, err)
	other := seedUser(t, f.db, models.RoleCEO)

	_, err = f.svc.Update(testCtx, actorOf(other), center.ID, EduCenterInput{Name: ptr("Hijacked")})
	requireStatus(t, http.StatusForbidden, err)

	var stored models.EduCenter
	require.NoError(t, f.db.First(&stored, "id = ?", center.ID).Error)
	assert.Equal(t, "Alpha Academy", stored.Name)

	// A ceo cannot hand the center to someone else; an admin can.
	_, err = f.svc.Update(testCtx, actorOf(f.ceo), center.ID, EduCenterInput{CEOID: &other.ID})
	requireStatus(t, http.StatusForbidden, err)
	updated, err := f.svc.Update(testCtx, actorOf(f.admin), center.ID, EduCenterInput{CEOID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.CEOID)
}

func TestUpdateEduCenterConflictRollsBack(t *testing.T) {
	f := newCenterFixture(t)
	_, err := f.svc.Create(testCtx, actorOf(f.ceo), f.input("Taken Name", "+998901110000"))
	require.NoError(t, err)
	in := f.input("Alpha Academy", "+998901112233")
	in.Subjects = &[]uint{f.subject[0].ID}
	center, err := f.svc.Create(testCtx, actorOf(f.ceo), in)
	require.NoError(t, err)

	_, err = f.svc.Update(testCtx, actorOf(f.ceo), center.ID, EduCenterInput{
		Address:  ptr("Changed 1"),
		Subjects: &[]uint{f.subject[1].ID, 777},
	})
	requireStatus(t, http.StatusNotFound, err)

	stored, err := f.svc.Get(testCtx, center.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mustaqillik 12", stored.Address)
	assert.Equal(t, []uint{f.subject[0].ID}, subjectIDs(stored.Subjects))

	_, err = f.svc.Update(testCtx, actorOf(f.ceo), center.ID, EduCenterInput{Name: ptr("TAKEN NAME")})
	requireMessages(t, err, "This education center name already exists")
}

func TestDeleteEduCenterCascades(t *testing.T) {
	f := newCenterFixture(t)
	in := f.input("Alpha Academy", "+998901112233")
	in.Subjects = &[]uint{f.subject[0].ID}
	in.Fields = &[]uint{f.field[0].ID}
	center, err := f.svc.Create(testCtx, actorOf(f.ceo), in)
	require.NoError(t, err)
	keep := seedCenter(t, f.db, f.ceo.ID, f.region.ID, "Survivor")

	branch := seedBranch(t, f.db, center.ID, f.region.ID, "Alpha Branch")
	require.NoError(t, replaceBranchLinks(f.db, branch.ID, &[]uint{f.subject[1].ID}, nil))
	user := seedUser(t, f.db, models.RoleUser)
	seedComment(t, f.db, user.ID, &center.ID, nil, 5)
	seedComment(t, f.db, user.ID, nil, &branch.ID, 4)
	seedComment(t, f.db, user.ID, &keep.ID, nil, 3)
	require.NoError(t, f.db.Create(&models.Like{UserID: user.ID, EduID: &center.ID}).Error)
	require.NoError(t, f.db.Create(&models.Enrollment{UserID: user.ID, EduID: center.ID, BranchID: &branch.ID}).Error)

	other := seedUser(t, f.db, models.RoleCEO)
	requireStatus(t, http.StatusForbidden, f.svc.Delete(testCtx, actorOf(other), center.ID))

	require.NoError(t, f.svc.Delete(testCtx, actorOf(f.ceo), center.ID))

	_, err = f.svc.Get(testCtx, center.ID)
	requireStatus(t, http.StatusNotFound, err)
	assert.EqualValues(t, 0, count(t, f.db, &models.Branch{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &models.EduCenterSubject{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &models.EduCenterField{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &models.BranchSubject{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &models.Like{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &models.Enrollment{}, ""))
	assert.EqualValues(t, 1, count(t, f.db, &models.Comment{}, ""))
	assert.EqualValues(t, 1, count(t, f.db, &models.EduCenter{}, ""))
	assert.EqualValues(t, 3, count(t, f.db, &models.Subject{}, ""))
}
