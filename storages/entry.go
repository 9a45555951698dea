package storages

import (
	"fmt"
	"time"
)

type Category string

const (
	CategoryJournal  Category = "journal"
	CategoryCreative Category = "creative"
	CategoryInsight  Category = "insight"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryJournal, CategoryCreative, CategoryInsight:
		return true
	}
	return false
}

const (
	DefaultEmotion = "✨"
	DefaultTopic   = "general"

	InsightEmotion = "💡"
	InsightTopic   = "insights"
)

type Entry struct {
	ID       int64     `json:"id"`
	Category Category  `json:"category"`
	Time     time.Time `json:"time"`
	Content  string    `json:"content"`
	Emotion  string    `json:"emotion"`
	Topic    string    `json:"topic"`
	Valence  float64   `json:"valence"`
}

// Insight builds an insight entry carrying its context and confidence in the content.
func Insight(content string, context string, confidence float64) Entry {
	if context == "" {
		context = DefaultTopic
	}
	return Entry{
		Category: CategoryInsight,
		Content:  fmt.Sprintf("Insight: %s (Context: %s, Confidence: %g)", content, context, confidence),
		Emotion:  InsightEmotion,
		Topic:    InsightTopic,
	}
}
