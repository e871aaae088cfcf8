package handler

import (
	"errors"
	"net/http"

	"dundie-rewards/internal/auth"
	"dundie-rewards/internal/config"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler issues login tokens.
type AuthHandler struct {
	DB  *gorm.DB
	JWT config.JWTConfig
}

func NewAuthHandler(db *gorm.DB, jwt config.JWTConfig) *AuthHandler {
	if jwt.ExpireHours <= 0 {
		jwt.ExpireHours = 24
	}
	return &AuthHandler{DB: db, JWT: jwt}
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email and password are required")
		return
	}

	actor, err := auth.Authenticate(c.Request.Context(), h.DB, auth.Credentials{Email: req.Email, Password: req.Password})
	if errors.Is(err, auth.ErrAuthentication) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load employee")
		return
	}

	token, err := auth.IssueToken(h.JWT, actor)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to issue token")
		return
	}

	util.Success(c, util.Response{
		"token":      token,
		"expires_in": h.JWT.ExpireHours * 3600,
		"employee":   employeeResp(actor),
	})
}
