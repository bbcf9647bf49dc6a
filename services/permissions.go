package services

import (
	"slices"

	"github.com/vnkhanh/educenter-backend/models"
)

type Operation string

const (
	OpEduCenterList   Operation = "edu_center.list"
	OpEduCenterGet    Operation = "edu_center.get"
	OpEduCenterCreate Operation = "edu_center.create"
	OpEduCenterUpdate Operation = "edu_center.update"
	OpEduCenterDelete Operation = "edu_center.delete"

	OpBranchList   Operation = "branch.list"
	OpBranchGet    Operation = "branch.get"
	OpBranchCreate Operation = "branch.create"
	OpBranchUpdate Operation = "branch.update"
	OpBranchDelete Operation = "branch.delete"

	OpCommentList   Operation = "comment.list"
	OpCommentGet    Operation = "comment.get"
	OpCommentCreate Operation = "comment.create"
	OpCommentUpdate Operation = "comment.update"
	OpCommentDelete Operation = "comment.delete"

	OpLikeList   Operation = "like.list"
	OpLikeGet    Operation = "like.get"
	OpLikeCreate Operation = "like.create"
	OpLikeDelete Operation = "like.delete"

	OpEnrollmentList   Operation = "enrollment.list"
	OpEnrollmentMine   Operation = "enrollment.mine"
	OpEnrollmentGet    Operation = "enrollment.get"
	OpEnrollmentCreate Operation = "enrollment.create"
	OpEnrollmentUpdate Operation = "enrollment.update"
	OpEnrollmentDelete Operation = "enrollment.delete"

	OpResourceList   Operation = "resource.list"
	OpResourceGet    Operation = "resource.get"
	OpResourceCreate Operation = "resource.create"
	OpResourceUpdate Operation = "resource.update"
	OpResourceDelete Operation = "resource.delete"

	OpLookupRead  Operation = "lookup.read"
	OpLookupWrite Operation = "lookup.write"

	OpRegionList   Operation = "region.list"
	OpRegionCreate Operation = "region.create"
	OpRegionUpdate Operation = "region.update"
	OpRegionDelete Operation = "region.delete"

	OpUserList   Operation = "user.list"
	OpUserGet    Operation = "user.get"
	OpUserUpdate Operation = "user.update"
	OpUserDelete Operation = "user.delete"
	OpMe         Operation = "user.me"

	OpAdminManage Operation = "admin.manage"

	OpSessionList   Operation = "session.list"
	OpSessionDelete Operation = "session.delete"

	OpExport Operation = "export"
	OpUpload Operation = "upload"
)

// Resource names an ownership resolver.
type Resource string

const (
	ResEduCenter  Resource = "edu_center"
	ResBranch     Resource = "branch"
	ResComment    Resource = "comment"
	ResLike       Resource = "like"
	ResEnrollment Resource = "enrollment"
	ResResource   Resource = "resource"
	ResUser       Resource = "user"
	ResSession    Resource = "session"
)

// Permission describes who may run an operation.
//
// Roles nil means the operation is public. Owner, when set, names the
// resolver used for the per-row check run after role admission.
// CEOModerates lets the CEO of the owning center act on rows authored by
// somebody else (comments, enrollments).
type Permission struct {
	Roles        []models.UserRole
	Owner        Resource
	CEOModerates bool
}

// Public reports whether the operation needs no token.
func (p Permission) Public() bool { return p.Roles == nil }

func (p Permission) Admits(role models.UserRole) bool {
	return p.Roles == nil || slices.Contains(p.Roles, role)
}

var (
	everyone  = models.AllRoles
	staff     = []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin}
	adminOnly = []models.UserRole{models.RoleAdmin}
)

// DefaultPermissions is the permission table of the service.
func DefaultPermissions() map[Operation]Permission {
	return map[Operation]Permission{
		OpEduCenterList:   {},
		OpEduCenterGet:    {},
		OpEduCenterCreate: {Roles: []models.UserRole{models.RoleAdmin, models.RoleCEO}},
		OpEduCenterUpdate: {Roles: []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin, models.RoleCEO}, Owner: ResEduCenter},
		OpEduCenterDelete: {Roles: []models.UserRole{models.RoleAdmin, models.RoleCEO}, Owner: ResEduCenter},

		OpBranchList:   {},
		OpBranchGet:    {},
		OpBranchCreate: {Roles: []models.UserRole{models.RoleAdmin, models.RoleCEO}},
		OpBranchUpdate: {Roles: []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin, models.RoleCEO}, Owner: ResBranch},
		OpBranchDelete: {Roles: []models.UserRole{models.RoleAdmin, models.RoleCEO}, Owner: ResBranch},

		OpCommentList:   {},
		OpCommentGet:    {},
		OpCommentCreate: {Roles: everyone},
		OpCommentUpdate: {Roles: everyone, Owner: ResComment},
		OpCommentDelete: {Roles: everyone, Owner: ResComment, CEOModerates: true},

		OpLikeList:   {},
		OpLikeGet:    {},
		OpLikeCreate: {Roles: everyone},
		OpLikeDelete: {Roles: everyone, Owner: ResLike},

		OpEnrollmentList:   {Roles: everyone},
		OpEnrollmentMine:   {Roles: everyone},
		OpEnrollmentGet:    {Roles: everyone, Owner: ResEnrollment, CEOModerates: true},
		OpEnrollmentCreate: {Roles: everyone},
		OpEnrollmentUpdate: {Roles: everyone, Owner: ResEnrollment},
		OpEnrollmentDelete: {Roles: everyone, Owner: ResEnrollment, CEOModerates: true},

		OpResourceList:   {},
		OpResourceGet:    {},
		OpResourceCreate: {Roles: everyone},
		OpResourceUpdate: {Roles: everyone, Owner: ResResource},
		OpResourceDelete: {Roles: everyone, Owner: ResResource},

		OpLookupRead:  {},
		OpLookupWrite: {Roles: staff},

		OpRegionList:   {},
		OpRegionCreate: {Roles: adminOnly},
		OpRegionUpdate: {Roles: staff},
		OpRegionDelete: {Roles: adminOnly},

		OpUserList:   {Roles: staff},
		OpUserGet:    {Roles: everyone},
		OpUserUpdate: {Roles: everyone, Owner: ResUser},
		OpUserDelete: {Roles: []models.UserRole{models.RoleAdmin, models.RoleUser, models.RoleCEO}, Owner: ResUser},
		OpMe:         {Roles: everyone},

		OpAdminManage: {Roles: staff},

		OpSessionList:   {Roles: everyone},
		OpSessionDelete: {Roles: everyone, Owner: ResSession},

		OpExport: {Roles: everyone},
		OpUpload: {Roles: everyone},
	}
}
