package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations 应用内嵌的 SQL 迁移
// 服务启动时调用，按版本号补齐所有未执行的迁移
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("读取内嵌迁移脚本失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建 Postgres 迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("构建迁移实例失败: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("应用迁移失败: %w", err)
	}

	version, dirty, _ := m.Version()
	if dirty {
		logger.Warn("迁移处于 dirty 状态，需人工介入", zap.Uint("version", version))
	} else {
		logger.Info("数据库结构已就绪", zap.Uint("version", version))
	}

	return nil
}
