package sandbox

import "strings"

// Normalize tidies staged text: it drops leading and trailing blank lines,
// trims trailing whitespace from every line, removes the indentation common
// to all non-blank lines and ends the text with a single newline. Empty
// input stays empty.
func Normalize(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}

	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	lines = lines[start:end]
	if len(lines) == 0 {
		return ""
	}

	indent := leading(lines[0])
	for _, l := range lines[1:] {
		if l != "" {
			indent = commonPrefix(indent, leading(l))
		}
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, indent)
	}
	return strings.Join(lines, "\n") + "\n"
}

func leading(l string) string {
	return l[:len(l)-len(strings.TrimLeft(l, " \t"))]
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
