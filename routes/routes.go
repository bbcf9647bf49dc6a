package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/config"
	"github.com/vnkhanh/educenter-backend/controllers"
	"github.com/vnkhanh/educenter-backend/middleware"
	"github.com/vnkhanh/educenter-backend/services"
	"github.com/vnkhanh/educenter-backend/utils"
)

// Dependencies are the long-lived collaborators built in main.
type Dependencies struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client // nil when disabled
	JWT     *utils.JWTManager
	Mailer  utils.Mailer
	Storage utils.Storage
	OTP     services.OTPStore
}

func SetupRouter(r *gin.Engine, deps Dependencies) *gin.Engine {
	cfg := deps.Config
	db := deps.DB

	r.Use(middleware.RequestLogger(), middleware.ErrorHandler(), middleware.Recovery())
	r.Use(corsMiddleware(cfg.CORS))

	gate := services.NewGate(db, nil)
	agg := services.NewAggregator(db)
	auth := middleware.NewAuth(deps.JWT, db, gate)
	allow := auth.Allow

	health := controllers.NewHealthController(db, deps.Redis)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", health.Check)

	if cfg.Upload.Driver == "local" {
		r.Static(cfg.Upload.URLPrefix, cfg.Upload.Dir)
	}

	centers := controllers.NewEduCenterController(services.NewEduCenterService(db, gate, agg))
	eduCenters := r.Group("/edu-centers")
	{
		eduCenters.GET("", allow(services.OpEduCenterList), centers.List)
		eduCenters.GET("/:id", allow(services.OpEduCenterGet), centers.Get)
		eduCenters.POST("", allow(services.OpEduCenterCreate), centers.Create)
		eduCenters.PATCH("/:id", allow(services.OpEduCenterUpdate), centers.Update)
		eduCenters.DELETE("/:id", allow(services.OpEduCenterDelete), centers.Delete)
	}

	branch := controllers.NewBranchController(services.NewBranchService(db, gate, agg))
	branches := r.Group("/branches")
	{
		branches.GET("", allow(services.OpBranchList), branch.List)
		branches.GET("/:id", allow(services.OpBranchGet), branch.Get)
		branches.POST("", allow(services.OpBranchCreate), branch.Create)
		branches.PATCH("/:id", allow(services.OpBranchUpdate), branch.Update)
		branches.DELETE("/:id", allow(services.OpBranchDelete), branch.Delete)
	}

	comment := controllers.NewCommentController(services.NewCommentService(db, gate))
	comments := r.Group("/comments")
	{
		comments.GET("", allow(services.OpCommentList), comment.List)
		comments.GET("/:id", allow(services.OpCommentGet), comment.Get)
		comments.POST("", allow(services.OpCommentCreate), comment.Create)
		comments.PATCH("/:id", allow(services.OpCommentUpdate), comment.Update)
		comments.DELETE("/:id", allow(services.OpCommentDelete), comment.Delete)
	}

	like := controllers.NewLikeController(services.NewLikeService(db, gate))
	likes := r.Group("/likes")
	{
		likes.GET("", allow(services.OpLikeList), like.List)
		likes.GET("/:id", allow(services.OpLikeGet), like.Get)
		likes.POST("", allow(services.OpLikeCreate), like.Create)
		likes.DELETE("/:id", allow(services.OpLikeDelete), like.Delete)
	}

	enrollment := controllers.NewEnrollmentController(services.NewEnrollmentService(db, gate))
	enrollments := r.Group("/enrollments")
	{
		enrollments.GET("", allow(services.OpEnrollmentList), enrollment.List)
		enrollments.GET("/my", allow(services.OpEnrollmentMine), enrollment.Mine)
		enrollments.GET("/:id", allow(services.OpEnrollmentGet), enrollment.Get)
		enrollments.POST("", allow(services.OpEnrollmentCreate), enrollment.Create)
		enrollments.PATCH("/:id", allow(services.OpEnrollmentUpdate), enrollment.Update)
		enrollments.DELETE("/:id", allow(services.OpEnrollmentDelete), enrollment.Delete)
	}

	resource := controllers.NewResourceController(services.NewResourceService(db, gate))
	resources := r.Group("/resources")
	{
		resources.GET("", allow(services.OpResourceList), resource.List)
		resources.GET("/:id", allow(services.OpResourceGet), resource.Get)
		resources.POST("", allow(services.OpResourceCreate), resource.Create)
		resources.PATCH("/:id", allow(services.OpResourceUpdate), resource.Update)
		resources.DELETE("/:id", allow(services.OpResourceDelete), resource.Delete)
	}

	lookup(r.Group("/subjects"), controllers.NewLookupController(services.NewSubjectService(db)), allow)
	lookup(r.Group("/fields"), controllers.NewLookupController(services.NewFieldService(db)), allow)
	lookup(r.Group("/res-categories"), controllers.NewLookupController(services.NewResourceCategoryService(db)), allow)

	region := controllers.NewLookupController(services.NewRegionService(db))
	regions := r.Group("/regions")
	{
		regions.GET("", allow(services.OpRegionList), region.List)
		regions.GET("/:id", allow(services.OpRegionList), region.Get)
		regions.POST("", allow(services.OpRegionCreate), region.Create)
		regions.PATCH("/:id", allow(services.OpRegionUpdate), region.Update)
		regions.DELETE("/:id", allow(services.OpRegionDelete), region.Delete)
	}

	authSvc := services.NewAuthService(db, deps.JWT, deps.OTP, deps.Mailer, cfg.OTP)
	authCtl := controllers.NewAuthController(authSvc)
	user := controllers.NewUserController(services.NewUserService(db, gate))
	users := r.Group("/users")
	{
		users.POST("/register", authCtl.Register)
		users.POST("/login", authCtl.Login)
		users.POST("/refresh", authCtl.Refresh)
		users.POST("/send-otp", authCtl.SendOTP)
		users.POST("/verify-otp", authCtl.VerifyOTP)
		users.POST("/resetpassword", authCtl.RequestPasswordReset)
		users.POST("/resetpassword/confirm", authCtl.ConfirmPasswordReset)

		users.GET("/me", allow(services.OpMe), user.Me)
		users.POST("/me", allow(services.OpMe), user.UpdateMe)
		users.GET("", allow(services.OpUserList), user.List)
		users.GET("/:id", allow(services.OpUserGet), user.Get)
		users.PATCH("/:id", allow(services.OpUserUpdate), user.Update)
		users.DELETE("/:id", allow(services.OpUserDelete), user.Delete)
	}

	admin := controllers.NewAdminController(services.NewAdminService(db))
	admins := r.Group("/admin", allow(services.OpAdminManage))
	{
		admins.GET("", admin.List)
		admins.GET("/:id", admin.Get)
		admins.POST("", admin.Create)
		admins.PATCH("/:id", admin.Update)
		admins.DELETE("/:id", admin.Delete)
	}

	session := controllers.NewSessionController(services.NewSessionService(db, gate))
	sessions := r.Group("/sessions")
	{
		sessions.GET("", allow(services.OpSessionList), session.List)
		sessions.DELETE("/:id", allow(services.OpSessionDelete), session.Delete)
	}

	export := controllers.NewExportController(services.NewExportService(db, agg))
	upload := controllers.NewUploadController(deps.Storage, cfg.Upload.MaxSize)
	api := r.Group("/api")
	{
		api.GET("/my-comments/export", allow(services.OpExport), export.Comments())
		api.GET("/my-edu-centers/export", allow(services.OpExport), export.EduCenters())
		api.GET("/my-resources/export", allow(services.OpExport), export.Resources())
		api.GET("/my-profile/export", allow(services.OpExport), export.Profile())
		api.GET("/my-enrollments/export", allow(services.OpExport), export.Enrollments())
		api.POST("/uploads", allow(services.OpUpload), upload.Upload)
	}

	return r
}

// lookup registers the CRUD routes shared by subjects, fields and resource categories.
func lookup[T any](g *gin.RouterGroup, h *controllers.LookupController[T], allow func(services.Operation) gin.HandlerFunc) {
	g.GET("", allow(services.OpLookupRead), h.List)
	g.GET("/:id", allow(services.OpLookupRead), h.Get)
	g.POST("", allow(services.OpLookupWrite), h.Create)
	g.PATCH("/:id", allow(services.OpLookupWrite), h.Update)
	g.DELETE("/:id", allow(services.OpLookupWrite), h.Delete)
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Auth-Token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: cfg.AllowCredentials,
	}
	if len(cfg.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}
	return cors.New(c)
}
