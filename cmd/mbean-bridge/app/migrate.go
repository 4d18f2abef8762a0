package app

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stacklok/mbean-bridge/database"
	"github.com/stacklok/mbean-bridge/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long:  `Database migration tool for managing schema versions. Use with 'up' or 'down' subcommands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")
	addConfigFlag(cmd, true)

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		Long: `Apply all pending database migrations to bring the schema up to date.
This command reads the database connection parameters from the config file.`,
		RunE: runMigrateUp,
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Migrate the database down",
		Long: `Migrate the database schema down by reverting migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Migrate down by 1 step
  mbean-bridge migrate down --config config.yaml --num-steps 1 --yes`,
		RunE: runMigrateDown,
	}
	down.Flags().UintP("num-steps", "n", 1, "Number of steps to revert")
	cmd.AddCommand(down)

	return cmd
}

// migrationConnString loads the configuration and returns its database URL
func migrationConnString(cmd *cobra.Command) (*config.DatabaseConfig, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	if cfg.Database == nil {
		return nil, "", fmt.Errorf("database configuration is required")
	}
	connString, err := cfg.Database.GetConnectionString()
	if err != nil {
		return nil, "", fmt.Errorf("failed to build connection string: %w", err)
	}
	return cfg.Database, connString, nil
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	dbCfg, connString, err := migrationConnString(cmd)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("About to apply migrations to database %s@%s:%d/%s. Continue?",
		dbCfg.User, dbCfg.Host, dbCfg.Port, dbCfg.Database)
	if ok, err := confirmed(cmd, prompt); err != nil || !ok {
		return err
	}

	slog.Info("Applying database migrations...")
	if err := database.MigrateUp(connString); err != nil {
		return err
	}
	slog.Info("Migrations applied successfully")
	return nil
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	_, connString, err := migrationConnString(cmd)
	if err != nil {
		return err
	}

	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	if numSteps == 0 || numSteps > math.MaxInt32 {
		return fmt.Errorf("num-steps must be between 1 and %d", math.MaxInt32)
	}

	prompt := fmt.Sprintf("WARNING: This will migrate down %d step(s) and may result in data loss. Continue?", numSteps)
	if ok, err := confirmed(cmd, prompt); err != nil || !ok {
		return err
	}

	slog.Info("Migrating down", "steps", numSteps)
	if err := database.MigrateDown(connString, int(numSteps)); err != nil { // #nosec G115 -- bounded above
		return err
	}
	slog.Info("Migration completed successfully")
	return nil
}

// confirmed asks the user unless --yes is set
func confirmed(cmd *cobra.Command, prompt string) (bool, error) {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return false, fmt.Errorf("failed to get yes flag: %w", err)
	}
	if yes {
		return true, nil
	}
	in := cmd.InOrStdin()
	if f, isFile := in.(*os.File); isFile && !term.IsTerminal(int(f.Fd())) { // #nosec G115 -- file descriptors fit in int
		return false, fmt.Errorf("refusing to migrate without confirmation on a non-interactive input, pass --yes")
	}
	ok := confirm(in, cmd.OutOrStdout(), prompt)
	if !ok {
		slog.Info("Migration cancelled by user")
	}
	return ok, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	_, _ = fmt.Fprintf(out, "%s (yes/no): ", prompt)
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "yes" || response == "y"
}
