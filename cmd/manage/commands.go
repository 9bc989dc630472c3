package main

import (
	"fmt"
	"time"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/ingestion/staticdata"
	"yamdb/internal/logger"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env is what every management command needs: a migrated database and a logger.
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *logrus.Logger
}

func openEnv() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	db, err := database.ConnectDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: log}, nil
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "manage",
		Short:         "YaMDb administration tasks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(), createAdminCmd(), importCmd(), pruneTokensCmd())
	return root
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Schema is up to date"))
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			users := service.NewUserService(repository.NewUserRepository(e.db))
			user, err := users.CreateAdmin(cmd.Context(), username, email, password)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Admin %s created", user.Username))
			if password == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No password set, sign in with an emailed confirmation code.")
			}
			return nil
		},
	}
	cmd.Flags().String("username", "", "Admin username")
	cmd.Flags().String("email", "", "Admin email")
	cmd.Flags().String("password", "", "Password for /auth/login/ (optional)")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the CSV fixtures from a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			stats, err := staticdata.NewImporter(e.db, e.logger).Import(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, color.GreenString("✓ Import finished"))
			fmt.Fprintf(out, "  categories: %d\n  genres: %d\n  titles: %d\n  title genres: %d\n",
				stats.Categories, stats.Genres, stats.Titles, stats.TitleGenres)
			fmt.Fprintf(out, "  users: %d\n  reviews: %d\n  comments: %d\n",
				stats.Users, stats.Reviews, stats.Comments)
			return nil
		},
	}
	cmd.Flags().String("dir", "static/data", "Directory holding the CSV files")
	return cmd
}

func pruneTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-tokens",
		Short: "Delete expired refresh tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			n, err := repository.NewRefreshTokenRepository(e.db).DeleteExpired(cmd.Context(), time.Now())
			if err != nil {
				return fmt.Errorf("failed to prune tokens: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Removed %d expired refresh tokens", n))
			return nil
		},
	}
}
