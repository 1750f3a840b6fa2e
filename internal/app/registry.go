package app

import (
	"database/sql"

	"go-timeoff/internal/approval"
	"go-timeoff/internal/balance"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/middleware"
	"go-timeoff/internal/notification"
	"go-timeoff/internal/rbac"
	"go-timeoff/internal/rbac/infra"
	"go-timeoff/internal/shared/config"
	"go-timeoff/internal/shared/counter"
	"go-timeoff/internal/timeoff"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	approvalRepo := approval.NewRepository(gormDB)
	timeOffRepo := timeoff.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger.Named("rbac.service"))

	// --- Services ---
	directory := employee.NewService(employeeRepo, logger)
	balanceService := balance.NewService(balanceRepo, directory, rdb, cfg.BalanceCacheTTL, logger)
	approvalRouter := approval.NewRouter(directory, rbacService, cfg.Approval.FallbackRoles, logger)

	timeOffService := timeoff.NewService(timeoff.Dependencies{
		DB:              db,
		Repo:            timeOffRepo,
		Approvals:       approvalRepo,
		Router:          approvalRouter,
		Ledger:          balance.NewLedger(balanceRepo, logger),
		Cache:           balanceService,
		Membership:      directory,
		Counter:         counterRepo,
		Port:            rbacService,
		Dispatcher:      notification.NewOutboxDispatcher(outboxRepo, logger),
		Validator:       timeoff.NewValidator(cfg.TimeOff.BalanceTypes),
		MaxReasonLength: cfg.TimeOff.MaxRejectionReasonLength,
	}, logger)

	approvalService := approval.NewService(approvalRepo, rbacService, map[approval.SubjectKind]approval.Decider{
		approval.SubjectTimeOffRequest: timeoff.NewApprovalDecider(timeOffRepo, timeOffService),
	}, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(directory, logger)
	balanceHandler := balance.NewHandler(balanceService, logger)
	approvalHandler := approval.NewHandler(approvalService, logger)
	timeOffHandler := timeoff.NewHandler(timeOffService, logger)
	rbacHandler := rbac.NewHandler(rbacService, logger)

	// --- Routes Registration ---
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	api := router.Group("/api/v1",
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.ContextLogger(logger),
		middleware.RateLimitByUser(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	)
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		approval.RegisterRoutes(api, approvalHandler)
		timeoff.RegisterRoutes(api, timeOffHandler, rbacService, rdb)
		rbac.RegisterRoutes(api, rbacHandler)
	}

	return nil
}
