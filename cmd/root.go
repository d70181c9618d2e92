package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"eznv-restore/internal/config"
	"eznv-restore/internal/gist"
	"eznv-restore/internal/installer"
	"eznv-restore/internal/logger"
)

var (
	// errMissingGistID is returned when neither a gist id nor --archive is given.
	errMissingGistID = errors.New(`YOU MUST PASS A GIST ID FOR AN "eznv_backup.sh" GENERATED GIST AS FIRST ARGUMENT`)
	// errTooManyArgs is returned when more than one positional argument is given.
	errTooManyArgs = errors.New("EXPECTED EXACTLY ONE GIST ID")
	// errArchiveWithGistID is returned when a gist id is combined with --archive.
	errArchiveWithGistID = errors.New("A GIST ID AND --archive ARE MUTUALLY EXCLUSIVE")
)

// options holds flag values for one command tree. Tests inject runner and
// httpClient; both default to the real implementations.
type options struct {
	debug       bool
	configPath  string
	archivePath string
	apiURL      string
	noClear     bool
	dryRun      bool
	policy      string
	workDir     string // directory installer commands run in; empty means the current one

	runner     installer.Runner
	httpClient *http.Client
}

// newRootCmd builds the eznv-restore command tree. The root command performs
// the restore itself; subcommands inspect a backup without changing anything.
func newRootCmd(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "eznv-restore <gist-id>",
		Short: "Reinstall packages from an eznv backup gist",
		Long: `eznv-restore downloads the backup gist written by eznv_backup.sh and
reinstalls every item listed in its "*.install" files.

Each "<name>.install" file is matched to the "<name>" entry of
restore_installers.json (next to this executable, or --config):

  {
    "brew": { "sh_item_command": "brew install {item}" },
    "mas":  { "sh_item_args": ["mas", "install", "{item}"] }
  }

The command runs once per non-empty line, with {item} replaced by the line.`,
		Args:          o.sourceArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.runRestore,
	}

	// Source and registry flags are shared by every subcommand.
	pf := root.PersistentFlags()
	pf.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	pf.StringVarP(&o.configPath, "config", "c", "", "Path to the installer config (default: "+config.FileName+" next to the executable)")
	pf.StringVar(&o.archivePath, "archive", "", "Read the backup from a downloaded gist archive instead of the network")
	pf.StringVar(&o.apiURL, "api-url", gist.DefaultBaseURL, "Base URL of the gist API")
	pf.BoolVar(&o.noClear, "no-clear", false, "Do not clear the terminal before running")
	_ = pf.MarkHidden("api-url")

	root.Flags().BoolVar(&o.dryRun, "dry-run", false, "Print the commands instead of running them")
	root.Flags().StringVar(&o.workDir, "workdir", "", "Directory to run installer commands in (default: current directory)")
	root.Flags().StringVar(&o.policy, "policy", installer.StreamPolicy{}.Name(),
		`How command results are reported: "stream" (stderr mentioning "error" is an error) or "exit-code"`)

	root.AddCommand(newPlanCmd(o))
	return root
}

// Execute runs the CLI and exits non-zero on any fatal error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	o := &options{}
	err := newRootCmd(o).ExecuteContext(ctx)
	stop()
	if err != nil {
		reportFatal(logger.New(os.Stdout, o.debug), err)
		os.Exit(1)
	}
}

// reportFatal prints err using the message that matches its kind.
func reportFatal(log *logger.Logger, err error) {
	var statusErr *gist.StatusError
	var missing *config.MissingError
	switch {
	case errors.As(err, &statusErr):
		log.Error("REQUEST TO %s FAILED WITH HTTP CODE %d!\n", statusErr.URL, statusErr.StatusCode)
	case errors.As(err, &missing):
		log.Error("ERROR: NO INSTALLER CONFIG FILE %q FOUND!\n", missing.Name)
		log.Debug("[DEBUG] %v\n", missing.Err)
	default:
		log.Error("ERROR: %v!\n", err)
	}
}

// sourceArgs validates the positional arguments against the chosen backup
// source: exactly one gist id, or none at all when --archive is set.
func (o *options) sourceArgs(_ *cobra.Command, args []string) error {
	switch {
	case o.archivePath != "" && len(args) > 0:
		return errArchiveWithGistID
	case o.archivePath != "":
		return nil
	case len(args) > 1:
		return fmt.Errorf("%w, GOT %d ARGUMENTS", errTooManyArgs, len(args))
	case len(args) == 0 || args[0] == "":
		return errMissingGistID
	}
	return nil
}

// newLogger returns a logger writing to the command's output stream.
func (o *options) newLogger(cmd *cobra.Command) *logger.Logger {
	return logger.New(cmd.OutOrStdout(), o.debug)
}

// runRestore is the root command: it loads the backup and the installer
// registry, then dispatches every install file under the selected policy.
// Nothing is run when either load fails.
func (o *options) runRestore(cmd *cobra.Command, args []string) error {
	log := o.newLogger(cmd)
	if !o.noClear {
		log.ClearScreen()
	}

	policy, err := installer.PolicyByName(o.policy)
	if err != nil {
		return err
	}

	m, reg, err := o.load(cmd.Context(), log, args)
	if err != nil {
		return err
	}

	runner := o.runner
	if runner == nil {
		runner = &installer.ExecRunner{Dir: o.workDir}
	}
	d := &installer.Dispatcher{
		Registry: reg,
		Runner:   runner,
		Policy:   policy,
		Log:      log,
		DryRun:   o.dryRun,
	}
	return d.Dispatch(cmd.Context(), m)
}
