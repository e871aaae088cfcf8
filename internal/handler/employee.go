package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"dundie-rewards/internal/core"
	"dundie-rewards/internal/ledger"
	"dundie-rewards/internal/middleware"
	"dundie-rewards/internal/models"
	"dundie-rewards/internal/store"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type EmployeeHandler struct {
	Svc *core.Service
}

func NewEmployeeHandler(svc *core.Service) *EmployeeHandler {
	return &EmployeeHandler{Svc: svc}
}

// ListEmployees handles GET /employees?email=&dept=
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var q core.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid query")
		return
	}

	views, err := h.Svc.Read(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read employees")
		return
	}

	util.Success(c, util.Response{
		"employees": views,
		"total":     len(views),
	})
}

// ---------- transfer ----------

type transferReq struct {
	Value *decimal.Decimal `json:"value"`
	Email string           `json:"email"`
	Dept  string           `json:"dept"`
}

// Transfer handles POST /transfers. Without email or dept every employee
// is a target.
func (h *EmployeeHandler) Transfer(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	var req transferReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "value is required")
		return
	}

	q := core.Query{Email: strings.TrimSpace(req.Email), Department: strings.TrimSpace(req.Dept)}
	msg, outcome, err := h.Svc.Transfer(c.Request.Context(), actor, *req.Value, q)
	var perr *ledger.PrecisionError
	if errors.As(err, &perr) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, perr.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "transfer failed")
		return
	}

	switch outcome {
	case core.OutcomeInsufficientFunds:
		util.Error(c, http.StatusUnprocessableEntity, util.CodeInsufficientFunds, msg)
	case core.OutcomeNoEmployees, core.OutcomeEmployeeNotFound:
		util.Error(c, http.StatusNotFound, util.CodeNotFound, msg)
	default:
		util.Success(c, util.Response{
			"message": core.DescriptionTransfer,
			"balance": actor.Balance(),
		})
	}
}

// ---------- history ----------

type transactionResp struct {
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
	Actor       string          `json:"actor"`
	Date        string          `json:"date"`
	Reference   string          `json:"reference,omitempty"`
}

func toTransactionResp(t models.Transaction) transactionResp {
	return transactionResp{
		Value:       t.Value.Round(ledger.BalancePlaces),
		Description: t.Description,
		Actor:       t.Actor,
		Date:        t.Date.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Reference:   t.Reference,
	}
}

// History handles GET /employees/:email/transactions?limit=
// Employees may read their own history; superusers may read anyone's.
func (h *EmployeeHandler) History(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(c.Param("email")))
	if email == "me" {
		email = actor.Email()
	}
	if email != actor.Email() && !actor.Superuser() {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "cannot read another employee's history")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	txns, err := h.Svc.History(c.Request.Context(), email, limit)
	if errors.Is(err, store.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "Employee "+email+" not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read history")
		return
	}

	list := make([]transactionResp, 0, len(txns))
	for _, t := range txns {
		list = append(list, toTransactionResp(t))
	}
	util.Success(c, util.Response{
		"email":        email,
		"transactions": list,
	})
}
