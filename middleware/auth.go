package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/educenter-backend/models"
	"github.com/vnkhanh/educenter-backend/services"
	"github.com/vnkhanh/educenter-backend/utils"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// Auth authenticates bearer tokens and admits callers by the permission table.
type Auth struct {
	jwt  *utils.JWTManager
	db   *gorm.DB
	gate *services.Gate
}

func NewAuth(jwt *utils.JWTManager, db *gorm.DB, gate *services.Gate) *Auth {
	return &Auth{jwt: jwt, db: db, gate: gate}
}

// bearerToken reads "Authorization: Bearer <token>", falling back to X-Auth-Token.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		header = c.GetHeader("X-Auth-Token")
	}
	if header == "" {
		return "", services.Unauthenticated("Missing Authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", services.Unauthenticated("Invalid Authorization header")
	}
	return parts[1], nil
}

func (a *Auth) authenticate(c *gin.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return err
	}
	claims, err := a.jwt.ValidateAccessToken(token)
	if err != nil {
		return services.Unauthenticated("Invalid or expired token")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return services.Unauthenticated("Invalid or expired token")
	}

	// The role comes from the database so a changed role applies immediately.
	var user models.User
	if err := a.db.WithContext(c.Request.Context()).Select("id", "role").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.Unauthenticated("User not found")
		}
		return err
	}
	c.Set(ContextUserID, user.ID)
	c.Set(ContextRole, user.Role)
	return nil
}

// ActorFrom returns the caller stored by a successful authentication.
func ActorFrom(c *gin.Context) (services.Actor, bool) {
	id, ok := c.Get(ContextUserID)
	if !ok {
		return services.Actor{}, false
	}
	role, _ := c.Get(ContextRole)
	userID, _ := id.(uuid.UUID)
	userRole, _ := role.(models.UserRole)
	return services.Actor{ID: userID, Role: userRole}, true
}
