package content

import (
	"sync"

	"github.com/jonreiter/govader"
)

// Sentiment classes.
const (
	Positive = "Positive"
	Negative = "Negative"
	Neutral  = "Neutral"
)

// SentimentClasses lists classes in report order.
var SentimentClasses = []string{Positive, Negative, Neutral}

const (
	// PositiveThreshold and NegativeThreshold bound the neutral band.
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Classify maps a compound score to a sentiment class.
func Classify(score float64) string {
	switch {
	case score >= PositiveThreshold:
		return Positive
	case score <= NegativeThreshold:
		return Negative
	default:
		return Neutral
	}
}

var (
	analyzerOnce sync.Once
	analyzer     *govader.SentimentIntensityAnalyzer
)

// vader loads the VADER lexicon on first use.
func vader() *govader.SentimentIntensityAnalyzer {
	analyzerOnce.Do(func() {
		analyzer = govader.NewSentimentIntensityAnalyzer()
	})
	return analyzer
}

// Scorer computes the VADER compound polarity in [-1, 1]. The zero value is
// ready to use and safe for concurrent use.
type Scorer struct{}

// Score returns the compound polarity of text.
func (Scorer) Score(text string) float64 {
	if text == "" {
		return 0
	}
	return vader().PolarityScores(text).Compound
}
