// Package docs embeds the help topics of lgr.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var pages embed.FS

// Index is the topic listing the others.
const Index = "readme"

// UnknownTopicError reports a topic without a page.
type UnknownTopicError struct {
	Topic     string
	Available []string
}

func (e *UnknownTopicError) Error() string {
	return fmt.Sprintf("unknown topic %q (available: %s)", e.Topic, strings.Join(e.Available, ", "))
}

// GetTopic returns the page of a topic. "*" returns every topic but the index.
func GetTopic(topic string) (string, error) {
	all, err := GetAllTopics()
	if err != nil {
		return "", err
	}
	if topic == "*" {
		return GetTopics(all...)
	}
	if topic != Index && !slices.Contains(all, topic) {
		return "", &UnknownTopicError{Topic: topic, Available: all}
	}
	content, err := pages.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("cannot read topic %q: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics concatenates the pages of topics.
func GetTopics(topics ...string) (string, error) {
	var b strings.Builder
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics returns the sorted topic names, without the index.
func GetAllTopics() ([]string, error) {
	names, err := fs.Glob(pages, "*.md")
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(names))
	for _, name := range names {
		if topic := strings.TrimSuffix(name, ".md"); topic != Index {
			topics = append(topics, topic)
		}
	}
	slices.Sort(topics)
	return topics, nil
}
