package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"quotestudio/internal/adapter/repo"
	"quotestudio/internal/domain"
	"quotestudio/internal/infra"
	"quotestudio/internal/ledger"
)

func main() {
	var (
		idFlag      string
		emailFlag   string
		creditsFlag int
		grantAdmin  bool
		revokeAdmin bool
		resetAll    int
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.IntVar(&creditsFlag, "credits", -1, "credit value to assign (clamped to the admin maximum)")
	flag.BoolVar(&grantAdmin, "grant-admin", false, "grant the administrator role")
	flag.BoolVar(&revokeAdmin, "revoke-admin", false, "revoke the administrator role")
	flag.IntVar(&resetAll, "reset-all", -1, "assign this credit value to every profile")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(emailFlag)

	if grantAdmin && revokeAdmin {
		exitWithError(errors.New("-grant-admin and -revoke-admin are exclusive"))
	}
	single := creditsFlag >= 0 || grantAdmin || revokeAdmin
	if resetAll < 0 && !single {
		exitWithError(errors.New("nothing to do: pass -credits, -grant-admin, -revoke-admin or -reset-all"))
	}
	if single && userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.CLILogger("credits")
	runner := infra.NewSQLRunner(pool, logger)
	profiles := repo.NewProfileRepository(runner)
	svc := ledger.NewService(profiles, repo.NewUsageRepository(runner), ledger.DefaultPolicy(), logger)

	opCtx, cancelOp := context.WithTimeout(context.Background(), time.Minute)
	defer cancelOp()

	if resetAll >= 0 {
		res, err := svc.AdminResetAll(opCtx, resetAll)
		if err != nil {
			exitWithError(fmt.Errorf("failed to reset credits: %w", err))
		}
		fmt.Printf("reset %d profile(s) to %d credits\n", len(res.Updated), svc.Policy().ClampCredits(resetAll))
		for _, f := range res.Failed {
			fmt.Fprintf(os.Stderr, "failed %s: %v\n", f.ID, f.Err)
		}
		if len(res.Failed) > 0 {
			os.Exit(2)
		}
	}
	if !single {
		return
	}

	var profile *domain.Profile
	if userID != "" {
		profile, err = profiles.GetByID(opCtx, userID)
	} else {
		profile, err = profiles.GetByEmail(opCtx, email)
	}
	if err != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", err))
	}

	if creditsFlag >= 0 {
		if profile, err = svc.AdminSetCredits(opCtx, profile.ID, creditsFlag); err != nil {
			exitWithError(fmt.Errorf("failed to set credits: %w", err))
		}
	}
	if grantAdmin || revokeAdmin {
		if profile, err = svc.GrantAdmin(opCtx, profile.ID, grantAdmin); err != nil {
			exitWithError(fmt.Errorf("failed to update role: %w", err))
		}
	}

	fmt.Printf("User %s (%s) updated\n", profile.ID, profile.Email)
	fmt.Printf("credits=%d\n", profile.Credits)
	fmt.Printf("last_credit_reset=%s\n", profile.LastCreditReset.UTC().Format(time.RFC3339))
	fmt.Printf("is_admin=%t\n", profile.IsAdmin)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
