package tzdata

import "strings"

// cleanLine strips a source line down to its tab-separated fields: comments
// (an unquoted '#' and everything after it) are removed, runs of unquoted
// whitespace collapse to a single separator, and quoted strings keep their
// interior whitespace intact. It returns nil for a blank or comment-only
// line.
func cleanLine(line string) []string {
	var b strings.Builder
	inQuote := false
	runes := []byte(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case !inQuote && c == '#':
			i = len(runes) // stop scanning; rest of the line is a comment
		case !inQuote && isSpace(c):
			for i+1 < len(runes) && isSpace(runes[i+1]) {
				i++
			}
			b.WriteByte('\t')
		default:
			b.WriteByte(c)
		}
	}
	s := strings.Trim(b.String(), "\t")
	if s == "" {
		return nil
	}
	fields := strings.Split(s, "\t")
	for i, f := range fields {
		fields[i] = unquote(f)
	}
	return fields
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\f', '\v', '\r':
		return true
	}
	return false
}

// unquote strips a single matching pair of leading/trailing double quotes
// from a field, if the whole field is wrapped in them.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// ntpEpochOffset is the number of seconds between the NTP epoch
// (1900-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const ntpEpochOffset = 2208988800

// scanExpiryComment looks for the special "#@<NTP-seconds>" comment form
// used by leap-seconds.list to announce the date through which its data is
// valid. It returns the decoded Unix time and true if the line contains
// such a comment.
func scanExpiryComment(line string) (int64, bool) {
	idx := strings.Index(line, "#@")
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+2:])
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	var ntp int64
	for _, c := range rest[:end] {
		ntp = ntp*10 + int64(c-'0')
	}
	return ntp - ntpEpochOffset, true
}
