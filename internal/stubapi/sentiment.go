package stubapi

import (
	"strings"

	"travelshare/internal/models"
)

// Tiny word lists approximating the backend's sentiment classifier closely
// enough for development and tests.
var (
	positiveWords = []string{
		"amazing", "awesome", "beautiful", "best", "fantastic", "good",
		"great", "happy", "incredible", "love", "loved", "lovely",
		"perfect", "stunning", "wonderful", "enjoy", "enjoyed",
	}
	negativeWords = []string{
		"awful", "bad", "boring", "disappointing", "dirty", "hate",
		"hated", "horrible", "meh", "sad", "terrible", "worst", "ugly",
	}
)

// analyzeSentiment assigns a label and confidence score from word counts.
func analyzeSentiment(body string) (string, float64) {
	text := strings.ToLower(body)

	var pos, neg int
	for _, w := range positiveWords {
		pos += strings.Count(text, w)
	}
	for _, w := range negativeWords {
		neg += strings.Count(text, w)
	}

	switch {
	case pos > neg:
		return models.SentimentPositive, confidence(pos, neg)
	case neg > pos:
		return models.SentimentNegative, confidence(neg, pos)
	default:
		return models.SentimentNeutral, 0.5
	}
}

func confidence(winner, loser int) float64 {
	total := winner + loser
	if total == 0 {
		return 0.5
	}
	score := 0.5 + 0.5*float64(winner-loser)/float64(total)
	if score > 0.99 {
		score = 0.99
	}
	return score
}
