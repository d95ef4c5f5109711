package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/config"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/db"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "evictctl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "evictctl",
		Short:        "Eviction tracker maintenance CLI",
		Long:         `evictctl applies database migrations, bootstraps administrator accounts and loads pricing or demo data.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newMigrateCmd(),
		newCreateAdminCmd(),
		newSeedCmd(),
	)
	return cmd
}

// connect загружает конфигурацию и открывает базу.
func connect(ctx context.Context) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	logger.Init("info")
	logger.SetTextFormatter()

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	return cfg, conn, nil
}

func newMigrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, conn, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			if dir == "" {
				dir = cfg.MigrationsPath
			}
			applied, err := db.RunMigrations(ctx, conn, dir)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (defaults to MIGRATIONS_PATH)")
	return cmd
}

func newCreateAdminCmd() *cobra.Command {
	var email, password, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, conn, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			tokens := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
			auth := service.NewAuthService(repository.NewUserRepository(conn), tokens)
			user, err := auth.CreateAdmin(ctx, email, password, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Administrator email")
	cmd.Flags().StringVar(&password, "password", "", "Administrator password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "Full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference or demo data",
	}
	cmd.AddCommand(newSeedPricingCmd(), newSeedDemoCmd())
	return cmd
}

func seedService(conn *sqlx.DB) *service.SeedService {
	return service.NewSeedService(
		repository.NewUserRepository(conn),
		repository.NewLawFirmRepository(conn),
		repository.NewPropertyRepository(conn),
		repository.NewCaseRepository(conn),
	)
}

func newSeedPricingCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Load case type prices from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, conn, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := seedService(conn).SeedPricing(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d prices updated\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "pricing.yaml", "Pricing YAML file")
	return cmd
}

func newSeedDemoCmd() *cobra.Command {
	opts := service.DemoOptions{}
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate demo landlords, contractors and cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, conn, err := connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			stats, err := seedService(conn).SeedDemo(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users: %d, properties: %d, tenants: %d, cases: %d\n",
				stats.Users, stats.Properties, stats.Tenants, stats.Cases)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Landlords, "landlords", 3, "Number of landlords")
	cmd.Flags().IntVar(&opts.Contractors, "contractors", 2, "Number of contractors")
	cmd.Flags().IntVar(&opts.CasesPerLandlord, "cases", 4, "Cases per landlord")
	cmd.Flags().StringVar(&opts.Password, "password", "DemoPass123!", "Password for demo accounts")
	cmd.Flags().StringVar(&opts.EmailDomain, "email-domain", "demo.local", "Email domain for demo accounts")
	return cmd
}
