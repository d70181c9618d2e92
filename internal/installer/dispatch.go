package installer

import (
	"context"
	"errors"
	"strings"

	"eznv-restore/internal/config"
	"eznv-restore/internal/logger"
	"eznv-restore/internal/manifest"
)

// ruleWidth is the length of the line printed under each file header.
const ruleWidth = 80

// Dispatcher runs the configured installer command for every item of every
// install file in a manifest. Files are processed in name order and items
// strictly in the order they appear; one command finishes before the next starts.
type Dispatcher struct {
	Registry config.Registry
	Runner   Runner
	Policy   Policy
	Log      *logger.Logger
	// DryRun prints each command instead of running it.
	DryRun bool
}

// Dispatch walks the manifest. Files without an installer, or whose installer
// has no command template, are skipped with a warning. Command failures are
// reported and never stop the run. Only ctx cancellation ends it early.
func (d *Dispatcher) Dispatch(ctx context.Context, m manifest.Manifest) error {
	files := m.InstallFiles()
	d.Log.Debug("[DEBUG] Found %d install files in %d manifest files\n", len(files), len(m))

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		inst, ok := d.Registry.Lookup(manifest.Key(name))
		if !ok {
			d.Log.Warn("WARNING: INSTALL CONFIG FOR %q NOT FOUND IN INSTALLER CONFIG!\n\n", name)
			continue
		}
		if !inst.HasCommand() {
			d.Log.Warn("WARNING: NO INSTALL COMMAND FOR %q IN INSTALLER CONFIG!\n\n", name)
			continue
		}

		if err := d.dispatchFile(ctx, name, inst, manifest.Items(m[name])); err != nil {
			return err
		}
	}
	return nil
}

// dispatchFile runs every item of one install file in order, stopping early
// only on cancellation or a template error that no item could satisfy.
func (d *Dispatcher) dispatchFile(ctx context.Context, name string, inst config.Installer, items []string) error {
	d.Log.Bold("RUNNING INSTALL FOR %q\n%s\n", name, strings.Repeat("-", ruleWidth))

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, err := BuildCommand(inst, item)
		if errors.Is(err, ErrIndexOutOfRange) {
			d.Log.Error("ERROR: BAD INSTALL COMMAND FOR %q, ITEM %q: %v\n\n", name, item, err)
			continue
		}
		if err != nil {
			// The template is the same for every item, so the rest would fail too.
			d.Log.Error("ERROR: BAD INSTALL COMMAND FOR %q: %v\n\n", name, err)
			return nil
		}

		if d.DryRun {
			d.Log.Info("[DRY RUN] %s\n", cmd.String())
			continue
		}

		d.Log.Debug("[DEBUG] Running command: %s\n", cmd.String())
		res := d.Runner.Run(ctx, cmd)
		d.Log.Debug("[DEBUG] %s exited with code %d\n", cmd.Args[0], res.ExitCode)
		d.policy().Report(d.Log, res)
	}
	return nil
}

func (d *Dispatcher) policy() Policy {
	if d.Policy == nil {
		return StreamPolicy{}
	}
	return d.Policy
}
