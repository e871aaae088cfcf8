package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dundie-rewards/internal/middleware"
	"dundie-rewards/internal/models"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupHandler serves point-in-time JSON snapshots of the ledger.
type BackupHandler struct {
	DB *gorm.DB
}

func NewBackupHandler(db *gorm.DB) *BackupHandler {
	return &BackupHandler{DB: db}
}

type backupData struct {
	ID           string               `json:"id"`
	Created      time.Time            `json:"created"`
	CreatedBy    string               `json:"created_by"`
	Employees    []models.Employee    `json:"employees"`
	Transactions []models.Transaction `json:"transactions"`
}

// CreateBackup streams every employee, balance and transaction as one
// JSON document, read inside a single transaction so the snapshot is
// consistent. Login hashes are not included.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "authentication required")
		return
	}

	data := backupData{
		ID:        uuid.NewString(),
		Created:   time.Now().UTC(),
		CreatedBy: actor.Email(),
	}
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Balance").Order("id").Find(&data.Employees).Error; err != nil {
			return err
		}
		return tx.Order("id").Find(&data.Transactions).Error
	})
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read ledger")
		return
	}

	raw, err := json.MarshalIndent(&data, "", "  ")
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to encode backup")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"backup-%s-%s.json\"",
		data.Created.Format("20060102"), data.ID))
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
