package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quintaverde/taskroster/internal/config"
	"github.com/quintaverde/taskroster/internal/database"
	"github.com/quintaverde/taskroster/internal/repository"
	"github.com/quintaverde/taskroster/internal/services"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	DatabaseURL string
}

// NewRootCommand creates the root command for the taskroster CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "taskroster",
		Short: "Task assignment synchronizer",
		Long:  "Assigns recurring and one-off tasks to collaborators from their shift roster.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel := slog.LevelInfo
			if opts.Verbose {
				logLevel = slog.LevelDebug
			}
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			slog.SetDefault(slog.New(handler))
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "database connection URL (defaults to DATABASE_URL / DB_* environment)")

	// Add subcommands
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewLoadFixturesCommand(opts))

	return cmd
}

// app bundles everything a command needs once the database is open.
type app struct {
	cfg        *config.Config
	db         *gorm.DB
	sync       *services.SyncService
	suppressor *services.Suppressor
}

// openApp loads config, connects, migrates, and wires the synchronizer.
func openApp(opts *RootOptions) (*app, error) {
	cfg := config.Load()
	if opts.DatabaseURL != "" {
		cfg.DatabaseURL = opts.DatabaseURL
	}

	if err := database.Connect(cfg); err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		return nil, err
	}

	db := database.GetDB()
	suppressor := services.NewSuppressor()
	syncService := services.NewSyncService(
		repository.NewTaskDefinitionRepository(db),
		repository.NewRosterRepository(db),
		repository.NewAssignmentRepository(db),
		suppressor,
		slog.Default(),
	)

	return &app{
		cfg:        cfg,
		db:         db,
		sync:       syncService,
		suppressor: suppressor,
	}, nil
}
