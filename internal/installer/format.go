package installer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrIndexOutOfRange is returned when a template indexes past the end of an
// item, as "{item[3]}" does for "vim". Unlike other template errors it
// depends on the item, so callers may skip just that item.
var ErrIndexOutOfRange = errors.New("string index out of range")

// formatField renders the body of one replacement field, the text between
// "{" and "}". It follows the str.format field grammar that installer
// templates were written against:
//
//	field      = "item" { "[" index "]" } [ "!" ( "s" | "r" | "a" ) ] [ ":" spec ]
//	spec       = [ [ fill ] align ] [ "0" ] [ width ] [ "." precision ] [ "s" ]
//
// An index picks a single character of the item. Attribute access,
// positional fields and numeric format options are rejected.
func formatField(field, item string) (string, error) {
	name, conv, spec, err := splitField(field)
	if err != nil {
		return "", err
	}

	value, err := lookupField(name, item)
	if err != nil {
		return "", err
	}

	switch conv {
	case "", "s":
	case "r":
		value = pyRepr(value, false)
	case "a":
		value = pyRepr(value, true)
	default:
		return "", fmt.Errorf("unknown conversion !%s", conv)
	}

	return applySpec(value, spec)
}

// splitField separates a field body into its name, conversion and format
// spec. "!" and ":" inside an index are part of the name.
func splitField(field string) (name, conv, spec string, err error) {
	inIndex := false
	for i := 0; i < len(field); i++ {
		switch c := field[i]; {
		case c == '[':
			inIndex = true
		case c == ']':
			inIndex = false
		case inIndex:
		case c == ':':
			return field[:i], "", field[i+1:], nil
		case c == '!':
			rest := field[i+1:]
			if rest == "" {
				return "", "", "", fmt.Errorf("missing conversion after '!' in {%s}", field)
			}
			conv, rest = rest[:1], rest[1:]
			if rest != "" && rest[0] != ':' {
				return "", "", "", fmt.Errorf("expected ':' after conversion in {%s}", field)
			}
			return field[:i], conv, strings.TrimPrefix(rest, ":"), nil
		}
	}
	return field, "", "", nil
}

// lookupField resolves "item" and any character indexes that follow it.
func lookupField(name, item string) (string, error) {
	arg := name
	if i := strings.IndexAny(name, ".["); i >= 0 {
		arg = name[:i]
	}
	switch arg {
	case Placeholder:
	case "":
		return "", fmt.Errorf("positional placeholder {%s} is not supported, use {%s}", name, Placeholder)
	default:
		return "", fmt.Errorf("unknown placeholder {%s}", name)
	}

	value := item
	for rest := name[len(arg):]; rest != ""; {
		if rest[0] == '.' {
			return "", fmt.Errorf("attribute access in {%s} is not supported", name)
		}
		if rest[0] != '[' {
			return "", fmt.Errorf("only '.' or '[' may follow ']' in {%s}", name)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", fmt.Errorf("missing ']' in {%s}", name)
		}
		key := rest[1:end]
		rest = rest[end+1:]

		if key == "" {
			return "", fmt.Errorf("empty index in {%s}", name)
		}
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || strings.ContainsAny(key, "+-") {
			return "", fmt.Errorf("string index %q in {%s} must be a non-negative integer", key, name)
		}
		runes := []rune(value)
		if idx >= len(runes) {
			return "", fmt.Errorf("%w: %d for %q in {%s}", ErrIndexOutOfRange, idx, value, name)
		}
		value = string(runes[idx])
	}
	return value, nil
}

// applySpec pads and truncates value according to a string format spec.
// Width and precision count characters, not bytes.
func applySpec(value, spec string) (string, error) {
	if spec == "" {
		return value, nil
	}
	if strings.ContainsAny(spec, "{}") {
		return "", fmt.Errorf("nested fields in format spec %q are not supported", spec)
	}

	s := []rune(spec)
	pos := 0
	fill, align := ' ', '<'
	fillSet, alignSet := false, false

	isAlign := func(r rune) bool { return strings.ContainsRune("<>^=", r) }
	switch {
	case len(s) >= 2 && isAlign(s[1]):
		fill, align = s[0], s[1]
		fillSet, alignSet = true, true
		pos = 2
	case len(s) >= 1 && isAlign(s[0]):
		align = s[0]
		alignSet = true
		pos = 1
	}
	if align == '=' {
		return "", fmt.Errorf("'=' alignment is not allowed for strings in %q", spec)
	}

	if pos < len(s) && strings.ContainsRune("+- z#", s[pos]) {
		return "", fmt.Errorf("option %q is not allowed for strings in %q", s[pos], spec)
	}
	if pos < len(s) && s[pos] == '0' {
		if !fillSet {
			fill = '0'
		}
		pos++
	}

	width, pos := readDigits(s, pos)

	if pos < len(s) && (s[pos] == ',' || s[pos] == '_') {
		return "", fmt.Errorf("grouping %q is not allowed for strings in %q", s[pos], spec)
	}

	precision := -1
	if pos < len(s) && s[pos] == '.' {
		start := pos + 1
		precision, pos = readDigits(s, start)
		if pos == start {
			return "", fmt.Errorf("missing precision in %q", spec)
		}
	}

	switch rest := string(s[pos:]); rest {
	case "", "s":
	default:
		return "", fmt.Errorf("unknown format code %q for a string in %q", rest, spec)
	}

	runes := []rune(value)
	if precision >= 0 && precision < len(runes) {
		runes = runes[:precision]
	}
	pad := width - len(runes)
	if pad <= 0 {
		return string(runes), nil
	}

	left := 0
	if alignSet {
		switch align {
		case '>':
			left = pad
		case '^':
			left = pad / 2
		}
	}
	fillStr := string(fill)
	return strings.Repeat(fillStr, left) + string(runes) + strings.Repeat(fillStr, pad-left), nil
}

// readDigits parses a decimal number starting at pos, returning 0 when there is none.
func readDigits(s []rune, pos int) (int, int) {
	n := 0
	for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
		n = n*10 + int(s[pos]-'0')
		pos++
	}
	return n, pos
}

// pyRepr quotes s the way repr() and ascii() do for strings: single quotes
// unless s contains only single quotes, with non-printable characters
// escaped. asciiOnly additionally escapes everything outside ASCII.
func pyRepr(s string, asciiOnly bool) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(`\t`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r < utf8.RuneSelf && r >= ' ' && r != 0x7f:
			b.WriteRune(r)
		case !asciiOnly && r >= utf8.RuneSelf && unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
