package postgres

import (
	"context"
	"time"

	"github.com/dom/donutdot/internal/domain"
	"github.com/dom/donutdot/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&domain.Profile{},
		&domain.LikeEdge{},
		&domain.Match{},
		&domain.Pass{},
		&domain.ChatSession{},
		&domain.Report{},
	}
}

func NewConnection(databaseURL string, debug bool) (*gorm.DB, error) {
	logMode := logger.Warn
	if debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	// Auto-migrate tables
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Profile:     NewProfileRepository(db),
		Like:        NewLikeRepository(db),
		Match:       NewMatchRepository(db),
		Pass:        NewPassRepository(db),
		ChatSession: NewChatSessionRepository(db),
		Report:      NewReportRepository(db),
		Tx:          NewTransactor(db),
	}
}

// Pinger adapts the pool for health checks.
type Pinger struct {
	db *gorm.DB
}

func NewPinger(db *gorm.DB) *Pinger {
	return &Pinger{db: db}
}

func (p *Pinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
