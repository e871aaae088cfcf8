package handler

import (
	"net/http"
	"strconv"
	"strings"

	"dundie-rewards/internal/ledger"
	"dundie-rewards/internal/middleware"
	"dundie-rewards/internal/store"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler lists the transactions an employee has recorded as actor.
type LogHandler struct {
	DB *gorm.DB
}

func NewLogHandler(db *gorm.DB) *LogHandler {
	return &LogHandler{DB: db}
}

type logResp struct {
	Employee    string `json:"employee"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Reference   string `json:"reference,omitempty"`
}

// ListLogs handles GET /logs?page=&page_size=&actor=
// Only superusers may look at another actor.
func (h *LogHandler) ListLogs(c *gin.Context) {
	current, ok := middleware.CurrentActor(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	actor := current.Email()
	if a := strings.ToLower(strings.TrimSpace(c.Query("actor"))); a != "" && a != actor {
		if !current.Superuser() {
			util.Error(c, http.StatusForbidden, util.CodeForbidden, "cannot read another actor's log")
			return
		}
		actor = a
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if size <= 0 || size > 100 {
		size = 50
	}

	txns, total, emails, err := store.TransactionsByActor(h.DB.WithContext(c.Request.Context()), actor, (page-1)*size, size)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read log")
		return
	}

	list := make([]logResp, 0, len(txns))
	for _, t := range txns {
		list = append(list, logResp{
			Employee:    emails[t.EmployeeID],
			Value:       t.Value.StringFixed(ledger.BalancePlaces),
			Description: t.Description,
			Date:        t.Date.UTC().Format("2006-01-02T15:04:05Z07:00"),
			Reference:   t.Reference,
		})
	}

	util.Success(c, util.Response{
		"actor":     actor,
		"list":      list,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}
