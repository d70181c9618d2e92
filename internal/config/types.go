package config

// FileName is the installer configuration file expected next to the executable.
const FileName = "restore_installers.json"

// Installer tells the dispatcher how to turn one manifest item into a command.
// - ItemCommand: shell command template containing an {item} placeholder,
//   split on single spaces after substitution.
// - ItemArgs: pre-tokenized template; each token may contain {item}.
//   Takes precedence over ItemCommand and keeps items with spaces intact.
type Installer struct {
	ItemCommand string   `json:"sh_item_command,omitempty" yaml:"sh_item_command,omitempty"`
	ItemArgs    []string `json:"sh_item_args,omitempty" yaml:"sh_item_args,omitempty"`
}

// HasCommand reports whether the entry supplies a command template.
func (i Installer) HasCommand() bool {
	return i.ItemCommand != "" || len(i.ItemArgs) > 0
}

// Registry maps a manifest key (install file name without ".install") to its installer.
type Registry map[string]Installer

// Lookup returns the installer configured for key.
func (r Registry) Lookup(key string) (Installer, bool) {
	inst, ok := r[key]
	return inst, ok
}
