package models

// Sentiment is the directional reading of a signal.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentNeutral Sentiment = "neutral"
	SentimentBearish Sentiment = "bearish"
)

// Signal is one labelled observation produced by a rule.
type Signal struct {
	Indicator string    `json:"indicator"`
	Value     string    `json:"value"`
	Sentiment Sentiment `json:"sentiment"`
}
