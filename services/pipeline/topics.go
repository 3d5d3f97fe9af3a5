package pipeline

import (
	"regexp"
	"strings"
)

const topicCount = 5

var numberedItem = regexp.MustCompile(`^\s*(\d+)[.)]\s+(.+)$`)

// ParseTopics extracts the entries of a numbered list, in order. Lines that
// are not list items are ignored, and markdown bold markers are removed.
func ParseTopics(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		m := numberedItem.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		item := strings.TrimSpace(strings.ReplaceAll(m[2], "**", ""))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
