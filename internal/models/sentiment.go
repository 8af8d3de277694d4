// Branchpulse - Multi-Branch Business Review Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/branchpulse

package models

import "strings"

// Sentiment is the categorical predictor label. It is always stored lowercase.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// AllSentiments lists the labels in display order.
var AllSentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// ParseSentiment normalizes s, accepting any letter case and surrounding
// whitespace. ok is false for anything that is not one of the three labels.
func ParseSentiment(s string) (sent Sentiment, ok bool) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case SentimentPositive:
		return SentimentPositive, true
	case SentimentNeutral:
		return SentimentNeutral, true
	case SentimentNegative:
		return SentimentNegative, true
	}
	return "", false
}

// SentimentFromPrediction maps the predictor's class index
// (0 negative, 1 neutral, 2 positive).
func SentimentFromPrediction(class int) (Sentiment, bool) {
	switch class {
	case 0:
		return SentimentNegative, true
	case 1:
		return SentimentNeutral, true
	case 2:
		return SentimentPositive, true
	}
	return "", false
}

func (s Sentiment) String() string { return string(s) }
