package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/snipsnap/internal/auth"
	"github.com/mrlokans/snipsnap/internal/config"
	"github.com/mrlokans/snipsnap/internal/database"
	"github.com/mrlokans/snipsnap/internal/database/users"
)

// PasswordEnvVar lets scripts pass the password without exposing it in argv.
const PasswordEnvVar = "SNIPSNAP_PASSWORD"

type CreateUserCommand struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	DatabasePath string
	BcryptCost   int

	Out io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{Out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address of the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password; falls back to $"+PasswordEnvVar)
	fs.StringVar(&cmd.FirstName, "first", "", "First name")
	fs.StringVar(&cmd.LastName, "last", "", "Last name")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "cost", 12, "bcrypt cost factor")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an account without going through the HTTP API.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s=secret123 %s create-user -email me@example.com\n", PasswordEnvVar, os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Password == "" {
		cmd.Password = os.Getenv(PasswordEnvVar)
	}

	if cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("email and password are required")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), auth.NewBcryptHasher(cmd.BcryptCost))
	user, err := service.Register(cmd.Email, cmd.Password, cmd.FirstName, cmd.LastName)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Created user %d (%s)\n", user.ID, user.Email)
	return nil
}
