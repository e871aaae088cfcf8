package handler

import (
	"net/http"

	"dundie-rewards/internal/middleware"
	"dundie-rewards/internal/models"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// ChangePassword replaces the authenticated employee's password.
func ChangePassword(db *gorm.DB, hasher util.PasswordHasher) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.CurrentActor(c)
		if !ok || actor.Employee.User == nil {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "new password must be 8-64 characters")
			return
		}

		if !util.CheckPassword(req.OldPassword, actor.Employee.User.Password) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "old password is incorrect")
			return
		}

		hash, err := hasher.Hash(req.NewPassword)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}

		err = db.WithContext(c.Request.Context()).
			Model(&models.User{}).
			Where("employee_id = ?", actor.Employee.ID).
			Update("password", hash).Error
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
			return
		}

		util.Success(c, util.Response{"message": "password changed"})
	}
}
