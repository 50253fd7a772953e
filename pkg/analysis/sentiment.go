// Package analysis derives sentiment and keywords from comment and post
// text. Scores are lexicon based and deterministic.
package analysis

import (
	"strings"
	"unicode"

	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

const (
	positiveThreshold = 0.3
	negativeThreshold = -0.3
)

var lexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.9, "awesome": 0.9,
	"love": 0.8, "loved": 0.8, "lovely": 0.8, "like": 0.4, "liked": 0.4,
	"nice": 0.6, "best": 1.0, "perfect": 1.0, "happy": 0.8, "thanks": 0.5,
	"thank": 0.5, "wonderful": 1.0, "fantastic": 0.9, "beautiful": 0.85,
	"fast": 0.3, "friendly": 0.6, "helpful": 0.6, "recommend": 0.6,
	"delicious": 0.9, "fresh": 0.4, "glad": 0.5, "cool": 0.4, "super": 0.6,
	"bad": -0.7, "terrible": -1.0, "awful": -1.0, "horrible": -1.0, "worst": -1.0,
	"hate": -0.8, "hated": -0.8, "poor": -0.5, "slow": -0.3, "rude": -0.8,
	"disappointed": -0.75, "disappointing": -0.75, "broken": -0.6, "wrong": -0.5,
	"angry": -0.6, "sad": -0.5, "scam": -0.9, "never": -0.2, "expensive": -0.4,
	"dirty": -0.6, "late": -0.3, "cold": -0.2, "useless": -0.8, "problem": -0.4,
	"refund": -0.3, "unacceptable": -0.9, "fake": -0.7,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "dont": true,
	"isn't": true, "isnt": true, "wasn't": true, "wasnt": true, "didn't": true,
	"didnt": true, "can't": true, "cant": true, "won't": true, "nothing": true,
}

var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "so": 1.2, "extremely": 1.5, "super": 1.3,
	"too": 1.2, "absolutely": 1.4, "quite": 1.1,
}

// Sentiment is a polarity score in [-1, 1] and its bucket.
type Sentiment struct {
	Score    float64
	Category models.SentimentCategory
}

// AnalyzeSentiment averages lexicon scores over the sentiment-bearing
// words. A preceding negation flips and dampens a word; an intensifier
// scales it.
func AnalyzeSentiment(text string) Sentiment {
	words := tokenize(text)

	var total float64
	var hits int
	for i, w := range words {
		score, ok := lexicon[w]
		if !ok {
			continue
		}
		if i > 0 {
			if m, ok := intensifiers[words[i-1]]; ok {
				score *= m
			}
		}
		for j := max(0, i-3); j < i; j++ {
			if negations[words[j]] {
				score *= -0.4
				break
			}
		}
		total += score
		hits++
	}

	if hits == 0 {
		return Sentiment{Score: 0, Category: models.SentimentNeutral}
	}

	score := clamp(total/float64(hits), -1, 1)
	if strings.Count(text, "!") > 0 && score != 0 {
		score = clamp(score*1.1, -1, 1)
	}
	return Sentiment{Score: score, Category: Categorize(score)}
}

// Categorize buckets a polarity score.
func Categorize(score float64) models.SentimentCategory {
	switch {
	case score > positiveThreshold:
		return models.SentimentPositive
	case score < negativeThreshold:
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}

// IsQuestion reports whether a comment reads like a question.
func IsQuestion(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	words := tokenize(text)
	if len(words) == 0 {
		return false
	}
	switch words[0] {
	case "how", "what", "when", "where", "why", "who", "which", "can", "could",
		"do", "does", "is", "are", "will", "would", "should":
		return true
	}
	return false
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
