package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/snipsnap/internal/auth"
)

// GenerateSecretCommand prints a fresh value for AUTH_TOKEN_SECRET.
type GenerateSecretCommand struct {
	Out io.Writer
}

func NewGenerateSecretCommand() *GenerateSecretCommand {
	return &GenerateSecretCommand{Out: os.Stdout}
}

func (cmd *GenerateSecretCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("generate-secret", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s generate-secret\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print a random 256-bit hex secret for AUTH_TOKEN_SECRET.\n")
	}
	return fs.Parse(args)
}

func (cmd *GenerateSecretCommand) Run() error {
	secret, err := auth.GenerateTokenSecret()
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}
	fmt.Fprintln(cmd.Out, secret)
	return nil
}
