package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	auditsvc "github.com/mrlokans/snipsnap/internal/audit"
	"github.com/mrlokans/snipsnap/internal/config"
	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/database/audit"
)

// CleanupAuditCommand runs the audit retention sweep once, outside the server.
type CleanupAuditCommand struct {
	DatabasePath  string
	RetentionDays int

	Out io.Writer
}

func NewCleanupAuditCommand() *CleanupAuditCommand {
	return &CleanupAuditCommand{Out: os.Stdout}
}

func (cmd *CleanupAuditCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("cleanup-audit", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.RetentionDays, "days", 30, "Delete audit events older than this many days")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s cleanup-audit [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.RetentionDays <= 0 {
		return fmt.Errorf("days must be positive")
	}
	return nil
}

func (cmd *CleanupAuditCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	deleted, err := auditsvc.NewService(audit.NewRepository(db.DB)).Cleanup(cmd.RetentionDays)
	if err != nil {
		return fmt.Errorf("failed to clean up audit events: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Deleted %d audit events older than %d days\n", deleted, cmd.RetentionDays)
	return nil
}
