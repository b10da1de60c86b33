package service

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/umuxt/burkol-mes/internal/mes/repository"
	"github.com/umuxt/burkol-mes/internal/shared/lock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrLedgerConflict 台账并发写冲突，有界重试耗尽后上抛，
	// 只影响当前派工单
	ErrLedgerConflict = errors.New("库存台账写入冲突")
	// ErrReconciliationConflict 同一派工单物料存在多条冲销，
	// 不自动修复，需人工复核
	ErrReconciliationConflict = errors.New("对账冲销条目冲突")
)

// Options 排程与台账运行参数
type Options struct {
	HorizonDays        int           // 日历前瞻天数
	LedgerMaxRetries   int           // 台账冲突重试次数
	LedgerRetryBackoff time.Duration // 重试退避基准
	LockTTL            time.Duration // 计划锁TTL
}

func (o Options) withDefaults() Options {
	if o.HorizonDays <= 0 {
		o.HorizonDays = 14
	}
	if o.LedgerMaxRetries <= 0 {
		o.LedgerMaxRetries = 3
	}
	if o.LedgerRetryBackoff <= 0 {
		o.LedgerRetryBackoff = 50 * time.Millisecond
	}
	if o.LockTTL <= 0 {
		o.LockTTL = 5 * time.Minute
	}
	return o
}

// Services MES服务集合
type Services struct {
	Plan      *PlanService
	Execution *ExecutionService
	Ledger    *LedgerService
	Reconcile *ReconcileService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, logger *zap.Logger, opts Options) *Services {
	opts = opts.withDefaults()
	locker := lock.NewPlanLocker(rdb, opts.LockTTL)
	ledger := NewLedgerService(repos.Stock, db, opts)
	return &Services{
		Plan:      NewPlanService(repos, db, locker, ledger, logger, opts),
		Execution: NewExecutionService(repos, db, ledger, logger),
		Ledger:    ledger,
		Reconcile: NewReconcileService(repos, db, logger),
	}
}
