package router

import (
	"net/http"

	"dundie-rewards/internal/config"
	"dundie-rewards/internal/core"
	"dundie-rewards/internal/handler"
	"dundie-rewards/internal/middleware"
	"dundie-rewards/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter configures the gin engine and the JSON API.
func SetupRouter(cfg *config.Config, db *gorm.DB, svc *core.Service, log *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery(log))

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			util.Error(c, http.StatusServiceUnavailable, util.CodeServerErr, "database unavailable")
			return
		}
		util.Success(c, util.Response{"status": "ok"})
	})

	// ====== API ======
	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(db, cfg.JWT)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	hasher := util.PasswordHasher{Algorithm: cfg.Security.PasswordHasher, BcryptCost: cfg.Security.BcryptCost}
	protected.GET("/me", handler.GetMe)
	protected.POST("/me/password", handler.ChangePassword(db, hasher))

	employeeHandler := handler.NewEmployeeHandler(svc)
	protected.GET("/employees", employeeHandler.ListEmployees)
	protected.GET("/employees/:email/transactions", employeeHandler.History)
	protected.POST("/transfers", employeeHandler.Transfer)

	importExportHandler := handler.NewImportExportHandler(svc)
	protected.GET("/export/csv", importExportHandler.ExportCSV)
	protected.GET("/export/xlsx", importExportHandler.ExportXLSX)
	protected.POST("/employees/load", middleware.RequireSuperuser(), importExportHandler.Load)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	backupHandler := handler.NewBackupHandler(db)
	protected.GET("/backup", middleware.RequireSuperuser(), backupHandler.CreateBackup)

	return r
}
