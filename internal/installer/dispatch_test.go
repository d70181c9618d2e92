package installer

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eznv-restore/internal/config"
	"eznv-restore/internal/manifest"
)

// fakeRunner records commands and replies with canned results keyed by command string.
type fakeRunner struct {
	ran     []string
	results map[string]Result
	onRun   func()
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) Result {
	f.ran = append(f.ran, cmd.String())
	if f.onRun != nil {
		f.onRun()
	}
	res := f.results[cmd.String()]
	res.Command = cmd
	return res
}

func TestDispatchRunsItemsInOrder(t *testing.T) {
	log, _ := newTestLogger(t)
	runner := &fakeRunner{}
	d := &Dispatcher{
		Registry: config.Registry{"brew": {ItemCommand: "echo {item}"}},
		Runner:   runner,
		Log:      log,
	}

	err := d.Dispatch(context.Background(), manifest.Manifest{"brew.install": "a\n\nb\n"})
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"echo a", "echo b"}, runner.ran); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatchIgnoresNonInstallFiles(t *testing.T) {
	log, buf := newTestLogger(t)
	runner := &fakeRunner{}
	d := &Dispatcher{
		Registry: config.Registry{"notes": {ItemCommand: "echo {item}"}},
		Runner:   runner,
		Log:      log,
	}

	err := d.Dispatch(context.Background(), manifest.Manifest{
		"notes":     "a\n",
		"notes.txt": "b\n",
	})
	require.NoError(t, err)
	assert.Empty(t, runner.ran)
	assert.Empty(t, buf.String())
}

// TestDispatchMissingKeyWarnsOnce verifies an unknown key yields exactly one warning naming the file.
func TestDispatchMissingKeyWarnsOnce(t *testing.T) {
	log, buf := newTestLogger(t)
	runner := &fakeRunner{}
	d := &Dispatcher{
		Registry: config.Registry{},
		Runner:   runner,
		Log:      log,
	}

	err := d.Dispatch(context.Background(), manifest.Manifest{"X.install": "one\ntwo\n"})
	require.NoError(t, err)
	assert.Empty(t, runner.ran)
	assert.Equal(t, 1, strings.Count(buf.String(), "WARNING"))
	assert.Contains(t, buf.String(), `"X.install"`)
}

func TestDispatchMissingTemplateWarns(t *testing.T) {
	log, buf := newTestLogger(t)
	runner := &fakeRunner{}
	d := &Dispatcher{
		Registry: config.Registry{"pip": {}},
		Runner:   runner,
		Log:      log,
	}

	err := d.Dispatch(context.Background(), manifest.Manifest{"pip.install": "requests\n"})
	require.NoError(t, err)
	assert.Empty(t, runner.ran)
	assert.Equal(t, 1, strings.Count(buf.String(), "WARNING"))
	assert.Contains(t, buf.String(), `NO INSTALL COMMAND FOR "pip.install"`)
}

// TestDispatchContinuesAfterFailures verifies skipped files and failing
// commands never stop the remaining files.
func TestDispatchContinuesAfterFailures(t *testing.T) {
	log, buf := newTestLogger(t)
	runner := &fakeRunner{results: map[string]Result{
		"brew install broken": {Stderr: "Error: No formula found\n", ExitCode: 1},
		"brew install git":    {Stdout: "git installed\n"},
	}}
	d := &Dispatcher{
		Registry: config.Registry{
			"brew": {ItemCommand: "brew install {item}"},
			"npm":  {ItemArgs: []string{"npm", "install", "-g", "{item}"}},
		},
		Runner: runner,
		Log:    log,
	}

	err := d.Dispatch(context.Background(), manifest.Manifest{
		"apt.install":  "vim\n",
		"brew.install": "broken\ngit\n",
		"npm.install":  "typescript\n",
	})
	require.NoError(t, err)

	want := []string{"brew install broken", "brew install git", "npm install -g typescript"}
	if diff := cmp.Diff(want, runner.ran); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	out := buf.String()
	assert.Contains(t, out, `"apt.install"`)
	assert.Contains(t, out, "ERROR:\nError: No formula found")
	assert.Contains(t, out, "git installed")
	assert.Contains(t, out, `RUNNING INSTALL FOR "brew.install"`)
	assert.Contains(t, out, `RUNNING INSTALL FOR "npm.install"`)
}

func TestDispatchBadTemplateSkipsFile(t *testing.T) {
	log, buf := newTestLogger(t)
	runner := &fakeRunner{}
	d := &Dispatcher{
		Registry: config.Registry{
			"bad":  {ItemCommand: "echo {pkg}"},
			"good": {ItemCommand: "echo {item}"},
		},
		Runner: runner,
		Log:    log,
	}

	err := d.Dispatch(context.Background(), manifest.Manifest{
		"bad.install":  "a\nb\n",
		"good.install": "c\n",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo c"}, runner.ran)
	assert.Equal(t, 1, strings.Count(buf.String(), "BAD INSTALL COMMAND"))
}

func TestDispatchDryRun(t *testing.T) {
	log, buf := newTestLogger(t)
	runner := &fakeRunner{}
	d := &Dispatcher{
		Registry: config.Registry{"brew": {ItemCommand: "brew install {item}"}},
		Runner:   runner,
		Log:      log,
		DryRun:   true,
	}

	require.NoError(t, d.Dispatch(context.Background(), manifest.Manifest{"brew.install": "git\nwget\n"}))
	assert.Empty(t, runner.ran)
	assert.Contains(t, buf.String(), "[DRY RUN] brew install git\n")
	assert.Contains(t, buf.String(), "[DRY RUN] brew install wget\n")
}

// TestDispatchSkipsItemOutOfRange verifies an index past the end of one item
// skips only that item, while the rest of the file still runs.
func TestDispatchSkipsItemOutOfRange(t *testing.T) {
	log, buf := newTestLogger(t)
	runner := &fakeRunner{}
	d := &Dispatcher{
		Registry: config.Registry{"apt": {ItemArgs: []string{"echo", "{item}", "{item[2]}"}}},
		Runner:   runner,
		Log:      log,
	}

	err := d.Dispatch(context.Background(), manifest.Manifest{"apt.install": "vim\njq\ngit\n"})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo vim m", "echo git t"}, runner.ran)
	assert.Contains(t, buf.String(), `ERROR: BAD INSTALL COMMAND FOR "apt.install", ITEM "jq"`)
}

func TestDispatchStopsOnCancel(t *testing.T) {
	log, _ := newTestLogger(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &fakeRunner{onRun: cancel}
	d := &Dispatcher{
		Registry: config.Registry{"brew": {ItemCommand: "brew install {item}"}},
		Runner:   runner,
		Log:      log,
	}

	err := d.Dispatch(ctx, manifest.Manifest{"brew.install": "git\nwget\ncurl\n"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"brew install git"}, runner.ran)
}

func TestDispatchUsesPolicy(t *testing.T) {
	log, buf := newTestLogger(t)
	runner := &fakeRunner{results: map[string]Result{
		"tool add x": {Stderr: "done with 0 problems\n", ExitCode: 4},
	}}
	d := &Dispatcher{
		Registry: config.Registry{"tool": {ItemCommand: "tool add {item}"}},
		Runner:   runner,
		Policy:   ExitCodePolicy{},
		Log:      log,
	}

	require.NoError(t, d.Dispatch(context.Background(), manifest.Manifest{"tool.install": "x\n"}))
	assert.Contains(t, buf.String(), "ERROR (exit 4)")
}
