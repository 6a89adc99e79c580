// Command admin manages accounts from the shell:
//
//	admin create-admin -name Alice -email alice@example.com -password secret
//	admin promote -email bob@example.com
//	admin promote -email bob@example.com -revoke
//	admin users -q bob
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sweet-shop/internal/core/auth"
	"sweet-shop/internal/core/cache"
	"sweet-shop/internal/core/config"
	"sweet-shop/internal/core/database"
	"sweet-shop/internal/core/logger"
	"sweet-shop/internal/repo"
	"sweet-shop/internal/service"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <create-admin|promote|users> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	// Promote evicts the cached user so running servers see the new role.
	rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rc.Close()

	jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer}
	svc := service.NewAuthService(repo.NewUserRepo(db), jwter, rc,
		time.Duration(cfg.Cache.UserTTLSec)*time.Second, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, svc, os.Args[1], os.Args[2:]); err != nil {
		log.Error(os.Args[1]+" failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(ctx context.Context, svc *service.AuthService, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	switch cmd {
	case "create-admin":
		name := fs.String("name", "", "display name")
		email := fs.String("email", "", "login email")
		password := fs.String("password", "", "password (min 6 chars)")
		_ = fs.Parse(args)
		u, err := svc.CreateUser(ctx, *name, *email, *password, true)
		if err != nil {
			return err
		}
		fmt.Printf("created admin %s <%s>\n", u.ID, u.Email)
	case "promote":
		email := fs.String("email", "", "login email")
		revoke := fs.Bool("revoke", false, "remove the admin flag instead")
		_ = fs.Parse(args)
		u, err := svc.SetAdmin(ctx, *email, !*revoke)
		if err != nil {
			return err
		}
		fmt.Printf("%s isAdmin=%t\n", u.Email, u.IsAdmin)
	case "users":
		q := fs.String("q", "", "name or email substring")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "rows to skip")
		_ = fs.Parse(args)
		page, err := svc.ListUsers(ctx, *q, *offset, *limit)
		if err != nil {
			return err
		}
		for _, u := range page.Items {
			fmt.Printf("%s\t%s\t%s\tadmin=%t\n", u.ID, u.Email, u.Name, u.IsAdmin)
		}
		fmt.Printf("%d of %d\n", len(page.Items), page.Total)
	default:
		usage()
	}
	return nil
}
