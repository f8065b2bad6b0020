package survey

import "strings"

// Answer options are persisted as a single string. Each option is terminated
// by a space and a comma; literal commas inside option text are escaped as
// "/," so the " ," token stays unambiguous as the delimiter. The format is
// storage-compatible with previously persisted data and must not change.
//
//	EncodeAnswers([]string{"red", "blue,green"}) == "red ,blue/,green ,"

const optionTerminator = " ,"

// EncodeAnswers encodes a list of option strings into one persisted string.
func EncodeAnswers(options []string) string {
	var b strings.Builder
	for _, opt := range options {
		b.WriteString(escapeOption(opt))
		b.WriteString(optionTerminator)
	}
	return b.String()
}

// DecodeAnswers is the inverse of EncodeAnswers.
func DecodeAnswers(s string) []string {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, optionTerminator)
	// the terminator after the last option leaves an empty trailing fragment
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ReplaceAll(p, "/,", ","))
	}
	return out
}

func escapeOption(opt string) string {
	return strings.ReplaceAll(opt, ",", "/,")
}
