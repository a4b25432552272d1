package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/logidocs/backend/internal/domain/identity"
	"github.com/logidocs/backend/internal/domain/shared"
	"github.com/logidocs/backend/internal/infrastructure/config"
	"github.com/logidocs/backend/internal/infrastructure/logger"
	"github.com/logidocs/backend/internal/infrastructure/migration"
	"github.com/logidocs/backend/internal/infrastructure/persistence"
	"github.com/logidocs/backend/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env holds what every subcommand shares once PersistentPreRunE has run
type env struct {
	dir      string
	logLevel string

	log *zap.Logger
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the LogiDocs database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(&logger.Config{
				Level:      e.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			e.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				_ = logger.Sync(e.log)
			}
		},
	}

	root.PersistentFlags().StringVar(&e.dir, "dir", "", "read migrations from this directory instead of the embedded set")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		e.migrateCmd("up", "Apply all pending migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error { return m.Up() }),
		e.migrateCmd("down", "Roll back all migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string) error { return m.Down() }),
		e.migrateCmd("step <n>", "Apply n migrations, or roll back when n is negative", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		e.migrateCmd("goto <version>", "Migrate up or down to a version", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.GoTo(uint(v))
			}),
		e.migrateCmd("force <version>", "Set the version without running migrations", cobra.ExactArgs(1),
			func(m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		e.migrateCmd("version", "Print the applied version", cobra.NoArgs, e.printVersion),
		e.dropCmd(),
		e.createCmd(),
		e.listCmd(),
		e.seedAdminCmd(),
	)
	return root
}

func (e *env) source() fs.FS {
	if e.dir != "" {
		return os.DirFS(e.dir)
	}
	return migrations.FS
}

func (e *env) loadConfig() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	e.cfg = cfg
	return cfg, nil
}

// withMigrator opens the database, runs fn and releases everything
func (e *env) withMigrator(ctx context.Context, fn func(*migration.Migrator) error) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, e.source(), e.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			e.log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

func (e *env) migrateCmd(use, short string, args cobra.PositionalArgs, run func(*migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return e.withMigrator(cmd.Context(), func(m *migration.Migrator) error {
				return run(m, argv)
			})
		},
	}
}

func (e *env) printVersion(m *migration.Migrator, _ []string) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		e.log.Info("No migrations applied")
		return nil
	}
	e.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	if dirty {
		e.log.Warn("Database is dirty; fix the failed migration and run force <version>")
	}
	return nil
}

func (e *env) dropCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to drop without --confirm")
			}
			return e.withMigrator(cmd.Context(), func(m *migration.Migrator) error {
				return m.Drop()
			})
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm that all data will be lost")
	return cmd
}

func (e *env) createCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := e.dir
			if dir == "" {
				dir = "migrations"
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			e.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "one-line description written into the files")
	return cmd
}

func (e *env) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := migration.ListMigrations(e.source())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				e.log.Info("No migrations found")
				return nil
			}
			e.log.Info("Available migrations", zap.Int("count", len(names)))
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), "  -", n)
			}
			return nil
		},
	}
}

func (e *env) seedAdminCmd() *cobra.Command {
	var (
		username   string
		email      string
		department string
		display    string
	)
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first administrator if the username is free",
		Long: "Creates an administrator account. The password is read from " +
			"LOGIDOCS_ADMIN_PASSWORD so it never appears in shell history.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("LOGIDOCS_ADMIN_PASSWORD")
			if password == "" {
				return errors.New("LOGIDOCS_ADMIN_PASSWORD is not set")
			}
			dept, err := shared.ParseDepartment(department)
			if err != nil {
				return err
			}
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			db, err := persistence.NewDatabase(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return seedAdmin(ctx, persistence.NewGormUserRepository(db.DB), e.log, adminSeed{
				Username:    username,
				Email:       email,
				DisplayName: display,
				Password:    password,
				Department:  dept,
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "administrator username")
	cmd.Flags().StringVar(&email, "email", "admin@logidocs.local", "administrator email")
	cmd.Flags().StringVar(&department, "department", string(shared.DepartmentVerifier), "department the administrator belongs to")
	cmd.Flags().StringVar(&display, "display-name", "Administrator", "name shown in the actions log")
	return cmd
}

type adminSeed struct {
	Username    string
	Email       string
	DisplayName string
	Password    string
	Department  shared.Department
}

// userStore is the part of the user repository seeding needs
type userStore interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *identity.User) error
}

// seedAdmin creates the administrator. An existing username is left alone.
func seedAdmin(ctx context.Context, users userStore, log *zap.Logger, s adminSeed) error {
	exists, err := users.ExistsByUsername(ctx, s.Username)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		log.Info("Administrator already exists", zap.String("username", s.Username))
		return nil
	}

	u, err := identity.NewUser(s.Username, s.Email, s.Password, s.Department)
	if err != nil {
		return err
	}
	if err := u.SetDisplayName(s.DisplayName); err != nil {
		return err
	}
	u.IsAdmin = true
	if err := users.Create(ctx, u); err != nil {
		return fmt.Errorf("failed to create administrator: %w", err)
	}
	log.Info("Administrator created",
		zap.String("username", u.Username),
		zap.String("department", u.Department.String()),
	)
	return nil
}
