// Package markdown rewrites rich markdown into the formatting subset chat
// transports render: *bold*, _italic_, ~strike~ and `inline code`.
package markdown

import (
	"regexp"
	"strings"
)

var (
	headingPattern = regexp.MustCompile(`(?m)^(?:#+[ \t]+)+`)
	imagePattern   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkPattern    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	fencePattern   = regexp.MustCompile("(?s)```(.*?)```")
	infoPattern    = regexp.MustCompile(`^[A-Za-z0-9_+#.-]+[ \t]*\n`)
)

// ToTransportText strips headings and images, flattens links to "label: url"
// and turns fenced code blocks into one inline code span per line. Tables and
// emphasis pass through untouched. The result is a fixpoint: applying
// ToTransportText to its own output returns it unchanged.
func ToTransportText(text string) string {
	if text == "" {
		return text
	}

	// A rewrite can expose a new construct (a link label starting with "# "),
	// so passes repeat until nothing changes. The loop ends: no pass adds a
	// "[" or "#", the heading, image and link passes each remove at least one,
	// and a fence rewrite consumes two backtick runs while creating at most one.
	for {
		next := rewrite(text)
		if next == text {
			return text
		}
		text = next
	}
}

func rewrite(text string) string {
	text = headingPattern.ReplaceAllString(text, "")
	text = imagePattern.ReplaceAllString(text, "")
	text = linkPattern.ReplaceAllString(text, "$1: $2")
	text = fencePattern.ReplaceAllStringFunc(text, func(block string) string {
		return inlineCode(fencePattern.FindStringSubmatch(block)[1])
	})
	return text
}

// inlineCode wraps every non-blank line of a fenced block in backticks. The
// info string (```go) and the blank lines around the body are dropped.
func inlineCode(body string) string {
	body = infoPattern.ReplaceAllString(body, "")

	lines := strings.Split(strings.Trim(body, "\r\n"), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(strings.ReplaceAll(line, "`", ""))
		if line == "" {
			lines[i] = ""
			continue
		}
		lines[i] = "`" + line + "`"
	}
	return strings.Join(lines, "\n")
}
