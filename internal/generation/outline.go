package generation

import (
	"regexp"
	"strings"
)

var (
	bulletRE     = regexp.MustCompile(`^(?:[-*•–]+|#+)\s*`)
	numberRE     = regexp.MustCompile(`^\d{1,2}[.)]\s+`)
	letterRE     = regexp.MustCompile(`^[a-zA-Z][.)]\s+`)
	initialRE    = regexp.MustCompile(`^[a-zA-Z]\.`)
	slideLabelRE = regexp.MustCompile(`(?i)^(?:slide|section)\s+\d+\s*[:.\-]\s*`)
)

// ParseOutline splits a model response into section titles, one per
// non-blank line, with bullets, numbering and markdown emphasis removed.
func ParseOutline(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "```") {
			continue
		}
		t = stripListMarker(t)
		t = slideLabelRE.ReplaceAllString(t, "")
		t = strings.Trim(t, "*_` ")
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// stripListMarker removes one leading bullet, "12." or "b)" marker. Years
// ("2024.") and initials ("A. B. Smith", "U.S.") are part of the title.
func stripListMarker(t string) string {
	if m := bulletRE.FindString(t); m != "" {
		return t[len(m):]
	}
	if m := numberRE.FindString(t); m != "" {
		return t[len(m):]
	}
	if m := letterRE.FindString(t); m != "" && !initialRE.MatchString(t[len(m):]) {
		return t[len(m):]
	}
	return t
}
