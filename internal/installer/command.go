package installer

import (
	"errors"
	"fmt"
	"strings"

	"eznv-restore/internal/config"
)

// Placeholder is substituted with the manifest item in command templates.
const Placeholder = "item"

// Command is one fully substituted, tokenized invocation.
type Command struct {
	Args []string
}

// String renders the command for display. It is not shell-quoted.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// ParseCommand tokenizes s by splitting on single spaces. Runs of spaces
// yield empty arguments and quoting is not understood, so templates whose
// items contain spaces should use sh_item_args instead.
func ParseCommand(s string) Command {
	return Command{Args: strings.Split(s, " ")}
}

// FormatItem substitutes item into tmpl. "{{" and "}}" are literal braces and
// every replacement field must refer to the item: "{item}", optionally with
// a character index, a !s/!r/!a conversion or a string format spec, as in
// "{item[0]}", "{item!r}" or "{item:>10}". Any other field or a lone brace
// is an error.
func FormatItem(tmpl, item string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		switch ch {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := fieldEnd(tmpl, i)
			if end < 0 {
				return "", fmt.Errorf("unbalanced '{' at offset %d in template %q", i, tmpl)
			}
			s, err := formatField(tmpl[i+1:end], item)
			if err != nil {
				return "", fmt.Errorf("%w in template %q", err, tmpl)
			}
			b.WriteString(s)
			i = end
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("single '}' at offset %d in template %q", i, tmpl)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

// fieldEnd returns the offset of the '}' closing the field opened at start,
// counting nested braces in the format spec, or -1 if it is never closed.
func fieldEnd(tmpl string, start int) int {
	depth := 0
	for i := start; i < len(tmpl); i++ {
		switch tmpl[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// BuildCommand turns an installer entry and one item into a Command.
// ItemArgs is substituted token by token; otherwise ItemCommand is
// substituted and then split on spaces.
func BuildCommand(inst config.Installer, item string) (Command, error) {
	if len(inst.ItemArgs) > 0 {
		args := make([]string, len(inst.ItemArgs))
		for i, tok := range inst.ItemArgs {
			s, err := FormatItem(tok, item)
			if err != nil {
				return Command{}, err
			}
			args[i] = s
		}
		return Command{Args: args}, nil
	}
	if inst.ItemCommand == "" {
		return Command{}, errors.New("installer has no command template")
	}
	s, err := FormatItem(inst.ItemCommand, item)
	if err != nil {
		return Command{}, err
	}
	return ParseCommand(s), nil
}
