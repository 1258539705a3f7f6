package db

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/models"
)

type Config struct {
	Dialect string `conf:"dialect" yaml:"dialect" json:"dialect"`
	DSN     string `conf:"dsn"     yaml:"dsn"     json:"dsn"`
	Debug   bool   `conf:"debug"   yaml:"debug"   json:"debug"`
}

// New opens the database, migrates the schema, and seeds the role groups.
// TranslateError is on so commit-time unique index violations surface as
// gorm.ErrDuplicatedKey regardless of dialect.
func New(cfg Config) *gorm.DB {
	var dialector gorm.Dialector

	switch cfg.Dialect {
	case "postgres", "pgx", "pg", "postgresql":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite3", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		panic(fmt.Errorf("invalid dialect: %s", cfg.Dialect))
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
	if !cfg.Debug {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		panic(err)
	}

	switch cfg.Dialect {
	case "sqlite3", "sqlite":
		// Cascade deletes depend on the pragma.
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			panic(err)
		}
	}

	if err := Migrate(conn); err != nil {
		panic(err)
	}

	return conn
}

// Migrate creates or updates the schema and seeds the fixed role groups.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Profile{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	for _, name := range []string{authz.RoleAuthor, authz.RoleCommenter, authz.RoleModerator} {
		group := models.Group{Name: name}

		err := conn.Where(&models.Group{Name: name}).FirstOrCreate(&group).Error
		if err != nil {
			return fmt.Errorf("failed to seed group %q: %w", name, err)
		}
	}

	return nil
}
