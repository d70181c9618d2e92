package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadRegistryJSON(t *testing.T) {
	p := writeFile(t, FileName, `{
	"brew": {"sh_item_command": "brew install {item}"},
	"npm": {"sh_item_args": ["npm", "install", "-g", "{item}"]},
	"broken": {"comment": "no command here"}
}`)

	reg, err := LoadRegistry(p)
	require.NoError(t, err)
	require.Len(t, reg, 3)

	brew, ok := reg.Lookup("brew")
	require.True(t, ok)
	assert.Equal(t, "brew install {item}", brew.ItemCommand)
	assert.True(t, brew.HasCommand())

	npm, ok := reg.Lookup("npm")
	require.True(t, ok)
	assert.Equal(t, []string{"npm", "install", "-g", "{item}"}, npm.ItemArgs)
	assert.True(t, npm.HasCommand())

	broken, ok := reg.Lookup("broken")
	require.True(t, ok)
	assert.False(t, broken.HasCommand())

	_, ok = reg.Lookup("pip")
	assert.False(t, ok)
}

func TestLoadRegistryYAML(t *testing.T) {
	p := writeFile(t, "restore_installers.yaml", `
brew:
  sh_item_command: brew install {item}
cask:
  sh_item_args: [brew, install, --cask, "{item}"]
`)
	reg, err := LoadRegistry(p)
	require.NoError(t, err)
	assert.Equal(t, "brew install {item}", reg["brew"].ItemCommand)
	assert.Equal(t, []string{"brew", "install", "--cask", "{item}"}, reg["cask"].ItemArgs)
}

// TestLoadRegistryKeepsMalformedTemplates verifies no placeholder validation happens at load time.
func TestLoadRegistryKeepsMalformedTemplates(t *testing.T) {
	p := writeFile(t, FileName, `{"x": {"sh_item_command": "echo {name} {"}}`)
	reg, err := LoadRegistry(p)
	require.NoError(t, err)
	assert.Equal(t, "echo {name} {", reg["x"].ItemCommand)
}

func TestLoadRegistryMissing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)

	var missing *MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, FileName, missing.Name)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadRegistryInvalidJSON(t *testing.T) {
	p := writeFile(t, FileName, `{"brew": `)
	_, err := LoadRegistry(p)
	require.Error(t, err)

	var missing *MissingError
	assert.False(t, errors.As(err, &missing))
}

func TestDefaultPathUsesFileName(t *testing.T) {
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, FileName, filepath.Base(p))
}
