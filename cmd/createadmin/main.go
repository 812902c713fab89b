package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/pssiii/marketing-backend/internal/account"
	"github.com/pssiii/marketing-backend/internal/account/entity"
	accountrepo "github.com/pssiii/marketing-backend/internal/account/repo"
	"github.com/pssiii/marketing-backend/pkg/database"
	"github.com/pssiii/marketing-backend/pkg/utilities"
)

// createadmin bootstraps an administrator account, skipping the normal
// verification and approval funnel. Meant to be run once per deployment.
func main() {
	_ = godotenv.Load()

	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "", "admin password (required)")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "User", "last name")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "createadmin: -password is required")
		os.Exit(2)
	}

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	sqlDB, err := database.Connect(database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	repo := accountrepo.NewUserRepo(sqlxDB)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repo.EnsureTable(ctx); err != nil {
		sugar.Fatalf("ensure users table: %v", err)
	}

	if _, err := repo.GetByUsername(ctx, *username); err == nil {
		sugar.Infof("admin user %q already exists", *username)
		return
	} else if !errors.Is(err, accountrepo.ErrNotFound) {
		sugar.Fatalf("lookup: %v", err)
	}

	hash, err := account.BcryptHasher{Cost: 12}.Hash(*password)
	if err != nil {
		sugar.Fatalf("hash password: %v", err)
	}

	u := &entity.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		FirstName:    *firstName,
		LastName:     *lastName,
		Status:       entity.StatusApproved,
		IsAdmin:      true,
	}
	if err := repo.Create(ctx, u); err != nil {
		sugar.Fatalf("create admin: %v", err)
	}

	sugar.Infof("admin user created: id=%d username=%s email=%s", u.ID, u.Username, u.Email)
}
