package handler

import (
	"net/http"

	"dundie-rewards/internal/auth"
	"dundie-rewards/internal/middleware"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
)

func employeeResp(actor *auth.Actor) gin.H {
	emp := actor.Employee
	return gin.H{
		"id":        emp.ID,
		"name":      emp.Name,
		"email":     emp.Email,
		"dept":      emp.Department,
		"role":      emp.Role,
		"currency":  emp.Currency,
		"privilege": emp.Privilege,
		"balance":   actor.Balance(),
	}
}

// GetMe returns the authenticated employee.
func GetMe(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}
	util.Success(c, util.Response{"employee": employeeResp(actor)})
}
