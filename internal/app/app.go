// Package app wires configuration, storage and services for the API server and payrollctl.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll/internal/config"
	"github.com/cmlabs-hris/hris-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll/internal/pkg/lock"
	"github.com/cmlabs-hris/hris-payroll/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/hris-payroll/internal/service/payroll"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config *config.Config
	DB     *database.DB
	Redis  *redis.Client // nil when REDIS_ENABLED is false

	JWT         jwt.Service
	Policy      payroll.Policy
	PayrollRepo payroll.PayrollRepository
	Payroll     payroll.PayrollService
}

// New connects to PostgreSQL (and Redis when enabled) and builds the payroll service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	policy, err := cfg.Payroll.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to load payroll policy: %w", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	a := &App{Config: cfg, DB: db, Policy: policy}

	var (
		locker    lock.Locker = lock.NewLocalLocker()
		summaries cache.Cache = cache.Noop{}
	)
	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Redis = client
		locker = lock.NewRedisLocker(client)
		summaries = cache.NewRedisCache(client, "hris", cfg.Redis.CacheTTL)
		slog.Info("Redis enabled for payroll locks and cache", "addr", cfg.Redis.Addr())
	} else {
		slog.Warn("Redis disabled, payroll run locks are process-local")
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	a.PayrollRepo = postgresql.NewPayrollRepository(db)

	loader := payrollService.NewSnapshotLoader(attendanceRepo, leaveRequestRepo, postgresql.NewCompensationStores(db)...)

	a.JWT = jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	a.Payroll = payrollService.NewPayrollService(
		postgresql.NewTransactor(db),
		a.PayrollRepo,
		employeeRepo,
		loader,
		locker,
		summaries,
		policy,
	)

	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error("Failed to close redis client", "error", err)
		}
	}
	a.DB.Close()
}
