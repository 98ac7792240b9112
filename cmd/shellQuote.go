package cmd

import "strings"

// shellQuote minimally quotes an argument for POSIX shells. Common safe
// characters pass through; anything else is single-quoted with the `'\''`
// escape for embedded single quotes.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, needsQuote) == -1 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	switch r {
	case '-', '_', '.', '/', '@', ':', ',', '+', '=':
		return false
	}
	return true
}

// shellJoin quotes each argument and joins them into one command line.
func shellJoin(args []string) string {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		quoted = append(quoted, shellQuote(a))
	}
	return strings.Join(quoted, " ")
}
