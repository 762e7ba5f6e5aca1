package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator 封装内嵌的 SQL 迁移，供服务启动与 plannerctl migrate 共用
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// MigrationStatus 当前 schema 版本
type MigrationStatus struct {
	Version uint
	Dirty   bool
	// Empty 尚未执行任何迁移
	Empty bool
}

// NewMigrator 基于 PostgreSQL 连接创建迁移器
func NewMigrator(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "coursepath_schema_migrations"})
	if err != nil {
		return nil, fmt.Errorf("创建迁移驱动失败: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("初始化迁移实例失败: %w", err)
	}
	return &Migrator{m: m, logger: logger}, nil
}

// Up 应用全部未执行的迁移；已是最新时不报错
func (g *Migrator) Up() error {
	if err := g.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}
	g.logStatus("数据库迁移完成")
	return nil
}

// Down 回滚 steps 个版本
func (g *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("回滚步数必须为正数: %d", steps)
	}
	if err := g.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("回滚迁移失败: %w", err)
	}
	g.logStatus("数据库回滚完成")
	return nil
}

// Status 读取当前版本
func (g *Migrator) Status() (MigrationStatus, error) {
	version, dirty, err := g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{Empty: true}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("读取迁移版本失败: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty}, nil
}

func (g *Migrator) logStatus(msg string) {
	st, err := g.Status()
	switch {
	case err != nil:
		g.logger.Warn("读取迁移版本失败", zap.Error(err))
	case st.Dirty:
		g.logger.Warn("数据库迁移处于 dirty 状态", zap.Uint("version", st.Version))
	default:
		g.logger.Info(msg, zap.Uint("version", st.Version))
	}
}

// RunMigrations 服务启动时执行全部迁移
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	g, err := NewMigrator(db, logger)
	if err != nil {
		return err
	}
	return g.Up()
}
