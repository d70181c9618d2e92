package installer

import (
	"eznv-restore/internal/config"
	"eznv-restore/internal/manifest"
)

// Status describes what Dispatch would do with an install file.
type Status string

const (
	StatusReady       Status = "ready"
	StatusNoConfig    Status = "no config"
	StatusNoCommand   Status = "no command"
	StatusBadTemplate Status = "bad template"
)

// PlanEntry summarizes one install file without running anything.
type PlanEntry struct {
	File   string
	Key    string
	Status Status
	Items  int
	// Example is the command built for the first item, when there is one.
	Example string
	Err     error
}

// Plan resolves every install file against the registry the way Dispatch
// would, in the same order, and reports the outcome per file.
func Plan(m manifest.Manifest, reg config.Registry) []PlanEntry {
	files := m.InstallFiles()
	entries := make([]PlanEntry, 0, len(files))
	for _, name := range files {
		items := manifest.Items(m[name])
		e := PlanEntry{File: name, Key: manifest.Key(name), Items: len(items)}

		inst, ok := reg.Lookup(e.Key)
		switch {
		case !ok:
			e.Status = StatusNoConfig
		case !inst.HasCommand():
			e.Status = StatusNoCommand
		default:
			e.Status = StatusReady
			if len(items) > 0 {
				cmd, err := BuildCommand(inst, items[0])
				if err != nil {
					e.Status = StatusBadTemplate
					e.Err = err
				} else {
					e.Example = cmd.String()
				}
			}
		}
		entries = append(entries, e)
	}
	return entries
}
