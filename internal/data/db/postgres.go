package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/qrcodes-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string `yaml:"driver"`

	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`

	SQLitePath string `yaml:"sqlite_path"`

	MaxOpenConns int `yaml:"max_open_conns"`
}

func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		sslMode,
	)
}

type Service struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// Open connects to the configured database. SQLite is meant for local
// development; production runs on Postgres.
func Open(baseLog *logger.Logger, cfg Config) (*Service, error) {
	serviceLog := baseLog.With("service", "DatabaseService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gcfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var dialector gorm.Dialector
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", DriverPostgres:
		driver = DriverPostgres
		dialector = postgres.Open(cfg.DSN())
	case DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "qrcodes.db"
		}
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	switch {
	case driver == DriverSQLite:
		sqlDB.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	serviceLog.Info("Database connected", "driver", driver, "host", cfg.Host, "name", cfg.Name)
	return &Service{db: db, driver: driver, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Driver() string { return s.driver }

func (s *Service) AutoMigrateAll() error {
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
