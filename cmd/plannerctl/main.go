// plannerctl 运维命令行：以表格打印学生的学位审计与学习计划，或签发本地调试 token。
//
//	plannerctl audit -student <id>
//	plannerctl plan  -student <id> [-draft <id>]
//	plannerctl token -user <id> -role student|advisor|admin
//	plannerctl revoke -token <jwt>
//	plannerctl migrate [-down N | -status]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"coursepath/config"
	"coursepath/internal/repository"
	"coursepath/internal/service"
	"coursepath/pkg/database"
	"coursepath/pkg/jwt"
	"coursepath/pkg/redis"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("PLANNER_CONFIG"))
	if err != nil {
		color.Red("加载配置失败: %v", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, os.Args[1], os.Args[2:]); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func usage() {
	color.Cyan("用法:")
	fmt.Println("  plannerctl audit -student <id>")
	fmt.Println("  plannerctl plan  -student <id> [-draft <id>]")
	fmt.Println("  plannerctl token -user <id> -role student|advisor|admin")
	fmt.Println("  plannerctl revoke -token <jwt>")
	fmt.Println("  plannerctl migrate [-down N | -status]")
}

func run(ctx context.Context, cfg *config.Config, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	student := fs.String("student", "", "学生 ID")
	draft := fs.String("draft", "", "草稿 ID，缺省为默认草稿")
	user := fs.String("user", "", "token 主体 ID")
	role := fs.String("role", "student", "token 角色")
	raw := fs.String("token", "", "待吊销的 token")
	down := fs.Int("down", 0, "回滚的迁移步数")
	status := fs.Bool("status", false, "仅查看迁移版本")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd {
	case "token":
		if *user == "" {
			return fmt.Errorf("缺少 -user")
		}
		token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(*user, *role)
		if err != nil {
			return fmt.Errorf("签发 token 失败: %w", err)
		}
		fmt.Println(token)
		return nil

	case "revoke":
		if *raw == "" {
			return fmt.Errorf("缺少 -token")
		}
		return revoke(ctx, cfg, *raw)

	case "migrate":
		return runMigrate(cfg, *down, *status)

	case "audit", "plan":
		if *student == "" {
			return fmt.Errorf("缺少 -student")
		}
		svc, closeDB, err := openService(cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		if cmd == "audit" {
			res, err := svc.Audit.RunAudit(ctx, *student)
			if err != nil {
				return err
			}
			renderAudit(os.Stdout, res)
			return nil
		}
		plan, err := svc.Plan.GetPlan(ctx, *student, *draft)
		if err != nil {
			return err
		}
		renderPlan(os.Stdout, plan)
		return nil
	}

	usage()
	return fmt.Errorf("未知命令: %s", cmd)
}

// revoke 将 token 的 jti 加入黑名单，保留至 token 过期
func revoke(ctx context.Context, cfg *config.Config, raw string) error {
	claims, err := jwt.NewManager(&cfg.Auth).ParseToken(raw)
	if err != nil {
		return fmt.Errorf("解析 token 失败: %w", err)
	}
	ttl := cfg.Auth.AccessTokenTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		color.Yellow("token 已过期，无需吊销")
		return nil
	}

	rdb, err := redis.NewClient(&cfg.Redis, zap.NewNop())
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("写入黑名单失败: %w", err)
	}
	color.Green("已吊销 %s（用户 %s，剩余 %s）", claims.ID, claims.UserID, ttl.Round(time.Second))
	return nil
}

// runMigrate 手动执行 PostgreSQL 迁移；sqlite 本地模式由服务启动时建表
func runMigrate(cfg *config.Config, down int, status bool) error {
	if cfg.Database.Driver == "sqlite" {
		return fmt.Errorf("sqlite 模式不使用 SQL 迁移")
	}
	db, err := database.NewDB(&cfg.Database, "error", zap.NewNop())
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	g, err := database.NewMigrator(sqlDB, zap.NewNop())
	if err != nil {
		return err
	}
	switch {
	case status:
	case down > 0:
		if err := g.Down(down); err != nil {
			return err
		}
	default:
		if err := g.Up(); err != nil {
			return err
		}
	}

	st, err := g.Status()
	if err != nil {
		return err
	}
	printMigrationStatus(os.Stdout, st)
	return nil
}

// openService 只读使用，不连接 Redis、不执行迁移
func openService(cfg *config.Config) (*service.Service, func(), error) {
	logger := zap.NewNop()
	db, err := database.NewDB(&cfg.Database, "error", logger)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}
	return service.NewService(cfg, repository.NewRepository(db), nil, logger), closeDB, nil
}
