// Command pawsitive is the command-line client for the Pawsitive Drive
// pet adoption and donation platform.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pawsitive-drive/pawsitive/internal/api"
	"github.com/pawsitive-drive/pawsitive/internal/app"
	"github.com/pawsitive-drive/pawsitive/internal/auth"
	"github.com/pawsitive-drive/pawsitive/internal/config"
	"github.com/pawsitive-drive/pawsitive/internal/donation"
	"github.com/pawsitive-drive/pawsitive/internal/profile"
	"github.com/spf13/pflag"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app.App, args []string) error
}

var commands = []command{
	{"login", "Sign in with email and password", runLogin},
	{"signup", "Create an account and sign in", runSignup},
	{"logout", "Sign out", runLogout},
	{"whoami", "Show the signed-in user", runWhoami},
	{"pets", "List pets", runPets},
	{"pet", "Show one pet", runPet},
	{"adopt", "Apply to adopt a pet", runAdopt},
	{"applications", "List your adoption applications", runApplications},
	{"donate", "Make a donation", runDonate},
	{"receipt", "Show a donation receipt", runReceipt},
	{"donations", "List your donations", runDonations},
	{"total", "Show the running donation total", runTotal},
	{"profile", "Show or update your profile", runProfile},
	{"admin", "Administrative operations", runAdmin},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", userMessage(err))
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flagSet := pflag.NewFlagSet("pawsitive", pflag.ContinueOnError)
	flagSet.StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to the config file")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.SetInterspersed(false)

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage()
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printUsage()
		return nil
	}

	args := flagSet.Args()
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("command required")
	}
	if args[0] == "help" {
		printUsage()
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		printUsage()
		return fmt.Errorf("unknown command: %q", args[0])
	}

	a, err := app.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	wait := a.Start(ctx)
	err = cmd.run(ctx, a, args[1:])
	wait()
	return err
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: pawsitive [--config FILE] <command> [flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(os.Stderr, "  %-13s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(os.Stderr, "\nThe API root is read from %s or the config file.\n", config.EnvAPIBase)
	fmt.Fprintf(os.Stderr, "Run 'pawsitive <command> --help' for command flags.\n")
}

// newFlagSet returns a flag set for a subcommand.
func newFlagSet(name string) *pflag.FlagSet {
	return pflag.NewFlagSet("pawsitive "+name, pflag.ContinueOnError)
}

// parse parses args and treats --help as success.
func parse(fs *pflag.FlagSet, args []string) (help bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// userMessage returns the text shown for err.
func userMessage(err error) string {
	var authErr *auth.Error
	var submitErr *donation.SubmitError
	var validationErr *donation.ValidationError
	var saveErr *profile.SaveError
	var apiErr *api.Error
	switch {
	case errors.As(err, &authErr):
		return authErr.Message
	case errors.As(err, &submitErr):
		return submitErr.Message
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &saveErr):
		return saveErr.Message
	case errors.As(err, &apiErr):
		return api.Message(err, err.Error())
	}
	return err.Error()
}
