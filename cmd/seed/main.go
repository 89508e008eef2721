package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/seed"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Prepare a shift planner database",
		SilenceUsage: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newFixtureCmd())
	root.AddCommand(newWorkersCmd())
	root.AddCommand(newTemplatesCmd())

	return root
}

// openRepository connects to the database and applies pending migrations.
func openRepository(ctx context.Context) (*config.Config, *repository.Repository, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, err
	}
	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		dbpool.Close()
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.RunMigrations(ctx); err != nil {
		dbpool.Close()
		return nil, nil, nil, err
	}

	return cfg, repo, func() { dbpool.Close() }, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, closeDB, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			slog.Info("migrations applied")
			return nil
		},
	}
}

func newFixtureCmd() *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "fixture",
		Short: "Load a company with its staff and shift templates from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := os.Open(file)
			if err != nil {
				return err
			}
			defer r.Close()

			fixture, err := seed.Load(r)
			if err != nil {
				return err
			}

			cfg, repo, closeDB, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			summary, err := seed.Apply(cmd.Context(), repo, fixture, cfg.Seed.User.Password)
			if err != nil {
				return err
			}

			slog.Info("fixture loaded",
				slog.String("company", summary.Company.ID.String()),
				slog.Int("users", summary.Users),
				slog.Int("templates", summary.Templates),
			)
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "fixture file")
	_ = c.MarkFlagRequired("file")
	return c
}

func newWorkersCmd() *cobra.Command {
	var n int
	var companyName string

	c := &cobra.Command{
		Use:   "workers",
		Short: "Insert random workers into a company",
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("invalid worker count %d", n)
			}

			cfg, repo, closeDB, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			company, err := repo.GetCompanyByName(cmd.Context(), companyName)
			if err != nil {
				return fmt.Errorf("get company %q: %w", companyName, err)
			}

			inserted := 0
			for range n {
				worker, err := utils.GenerateRandomWorker(company.ID, cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("failed to generate worker", slog.String("error", err.Error()))
					continue
				}
				if err := repo.CreateUser(cmd.Context(), worker); err != nil {
					slog.Error("failed to insert worker", slog.String("email", worker.Email), slog.String("error", err.Error()))
					continue
				}
				inserted++
			}

			slog.Info("workers inserted", slog.Int("count", inserted))
			return nil
		},
	}

	c.Flags().IntVarP(&n, "number", "n", 5, "number of workers")
	c.Flags().StringVar(&companyName, "company", "Default Company", "company name")
	return c
}

func newTemplatesCmd() *cobra.Command {
	var n int
	var companyName string

	c := &cobra.Command{
		Use:   "templates",
		Short: "Insert back to back random shift templates into a company",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, closeDB, err := openRepository(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			company, err := repo.GetCompanyByName(cmd.Context(), companyName)
			if err != nil {
				return fmt.Errorf("get company %q: %w", companyName, err)
			}

			inserted := 0
			for _, template := range utils.GenerateRandomShiftTemplates(company.ID, n) {
				if err := repo.CreateShiftTemplate(cmd.Context(), template); err != nil {
					slog.Error("failed to insert shift template", slog.String("name", template.Name), slog.String("error", err.Error()))
					continue
				}
				inserted++
			}

			slog.Info("shift templates inserted", slog.Int("count", inserted))
			return nil
		},
	}

	c.Flags().IntVarP(&n, "number", "n", 3, "number of templates")
	c.Flags().StringVar(&companyName, "company", "Default Company", "company name")
	return c
}
