// Command seedschool provisions the default academic structure for one
// school: the academic year, the Creche-to-JHS class groups and their
// sections. Re-running it against an already seeded school is a no-op.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/scholaris-io/scholaris-api/internal/config"
	"github.com/scholaris-io/scholaris-api/internal/database"
	"github.com/scholaris-io/scholaris-api/internal/repository"
	"github.com/scholaris-io/scholaris-api/internal/service"
)

func main() {
	school := pflag.String("school", "", "subdomain of the school to seed (required)")
	year := pflag.String("year", "", "academic year label, e.g. 2025-2026 (defaults to the current one)")
	timeout := pflag.Duration("timeout", 30*time.Second, "how long to wait for the database")
	pflag.Parse()

	if *school == "" {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	seeder := service.NewSeedService(repository.NewSchoolRepository(db), logger)
	report, err := seeder.SeedSchool(ctx, *school, *year)
	if err != nil {
		if errors.Is(err, service.ErrSeedSchoolNotFound) {
			log.Fatalf("school %q not found", *school)
		}
		log.Fatalf("seeding failed: %v", err)
	}

	fmt.Printf("school %d seeded for %s: %d classes and %d sections created",
		report.SchoolID, report.AcademicYear, report.ClassesCreated, report.SectionsCreated)
	if !report.YearCreated {
		fmt.Print(" (academic year already existed)")
	}
	fmt.Println()
}
