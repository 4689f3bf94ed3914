// Command seed creates an initial account and a handful of sample specimens
// so a fresh deployment has something to log in with and look at.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/ebalodis/shellvault/internal/server/config"
	"github.com/ebalodis/shellvault/internal/server/models"
	"github.com/ebalodis/shellvault/internal/server/repositories/repomanager"
	"github.com/ebalodis/shellvault/internal/server/services"
)

func main() {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	dsn := flag.String("d", cfg.DatabaseDSN, "database DSN")
	email := flag.String("e", "test@shellvault.local", "account email")
	fullName := flag.String("n", "Test User", "account full name")
	password := flag.String("p", "", "account password (prompted when empty)")
	withSamples := flag.Bool("samples", true, "seed sample specimens")
	flag.Parse()

	cfg.DatabaseDSN = *dsn

	pw := *password
	if pw == "" {
		var err error
		if pw, err = promptPassword(); err != nil {
			log.Fatalf("reading password: %v", err)
		}
	}

	ctx := context.Background()
	if err := run(ctx, cfg, *email, pw, *fullName, *withSamples); err != nil {
		log.Fatal(err)
	}
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", fmt.Errorf("empty password")
	}
	return string(b), nil
}

func run(ctx context.Context, cfg *config.Config, email, password, fullName string, withSamples bool) error {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	accounts := services.NewAccountService(db, m, cfg)

	account, err := accounts.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account == nil {
		if account, err = accounts.Register(ctx, email, password, &fullName); err != nil {
			return fmt.Errorf("creating account: %w", err)
		}
		fmt.Printf("Account created: %s (%s)\n", account.Email, account.ID)
	} else {
		fmt.Printf("Account already exists: %s (%s)\n", account.Email, account.ID)
	}

	if !withSamples {
		return nil
	}
	return seedSpecimens(ctx, db, m, account.ID)
}

func seedSpecimens(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager, ownerID string) error {
	repo := m.Specimens(db)

	count, err := repo.Count(ctx, models.SpecimenFilter{})
	if err != nil {
		return err
	}
	if count > 0 {
		fmt.Printf("Specimens already present (%d), skipping samples\n", count)
		return nil
	}

	for _, data := range sampleSpecimens() {
		sp, err := repo.Create(ctx, data, &ownerID)
		if err != nil {
			return fmt.Errorf("creating specimen %q: %w", data.Name, err)
		}
		fmt.Printf("Specimen created: %s (%s)\n", sp.Name, sp.ID)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func sampleSpecimens() []models.SpecimenCreate {
	date := func(s string) *time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			panic(err)
		}
		return &d
	}
	return []models.SpecimenCreate{
		{
			Name:            "Textile cone",
			Species:         "Conus textile",
			Description:     ptr("Intricate tent-pattern shell, glossy finish"),
			Color:           ptr("brown"),
			SizeMM:          ptr(92),
			FoundOn:         date("2023-07-14"),
			FoundAt:         ptr("Okinawa, Japan"),
			StorageLocation: ptr("cabinet A, drawer 2"),
			Condition:       ptr("excellent"),
		},
		{
			Name:            "Venus comb murex",
			Species:         "Murex pecten",
			Description:     ptr("Long siphonal canal with over a hundred intact spines"),
			Color:           ptr("white"),
			SizeMM:          ptr(145),
			FoundOn:         date("2022-11-03"),
			FoundAt:         ptr("Cebu, Philippines"),
			StorageLocation: ptr("cabinet B, drawer 1"),
			Condition:       ptr("good"),
		},
		{
			Name:      "Common cockle",
			Species:   "Cerastoderma edule",
			Color:     ptr("cream"),
			SizeMM:    ptr(38),
			FoundOn:   date("2024-04-21"),
			FoundAt:   ptr("Jūrmala beach, Latvia"),
			Condition: ptr("fair"),
			Notes:     ptr("picked up during low tide, still paired valves"),
		},
	}
}
