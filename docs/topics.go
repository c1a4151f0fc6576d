// Package docs embeds the pt user documentation and serves it by topic,
// one markdown page per topic.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.md
var pages embed.FS

// AllTopics lists the available topic names, sorted. The readme is the
// index page, not a topic.
func AllTopics() []string {
	files, _ := fs.Glob(pages, "*.md") // the pattern is constant, Glob cannot fail
	var topics []string
	for _, file := range files {
		name := strings.TrimSuffix(file, ".md")
		if name == "readme" {
			continue
		}
		topics = append(topics, name)
	}
	sort.Strings(topics)
	return topics
}

// GetTopic returns the markdown page for one topic.
func GetTopic(topic string) (string, error) { return GetTopics(topic) }

// GetTopics concatenates the pages for the given topics, in order. A "*"
// in the list expands in place to every available topic.
func GetTopics(topics ...string) (string, error) {
	var names []string
	for _, topic := range topics {
		if topic == "*" {
			names = append(names, AllTopics()...)
			continue
		}
		names = append(names, topic)
	}

	var b strings.Builder
	for _, name := range names {
		content, err := pages.ReadFile(name + ".md")
		if err != nil {
			return "", fmt.Errorf("topic %q not found: %w", name, err)
		}
		b.Write(content)
		b.WriteByte('\n')
	}
	return b.String(), nil
}
