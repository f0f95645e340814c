// Package models contains the data types shared by the API client and the web layer.
package models

// Sentiment labels assigned by the backend's classifier.
const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
)

// SentimentLabels lists the filter values the backend understands, in display order.
var SentimentLabels = []string{SentimentPositive, SentimentNegative, SentimentNeutral}

// Post is a user-submitted text update as returned by the backend.
// IDs and timestamps are server-assigned; posts are immutable once created.
type Post struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Body           string  `json:"body"`
	ImageID        string  `json:"image_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
	SentimentScore float64 `json:"sentiment_score,omitempty"`
}

// HasImage reports whether the post references an uploaded image.
func (p *Post) HasImage() bool {
	return p.ImageID != ""
}

// PlanRequest is the payload for the trip planning endpoint.
// Budget, days and people travel as JSON numbers, never strings.
type PlanRequest struct {
	City    string `json:"city"`
	Concept string `json:"concept"`
	Budget  int    `json:"budget"`
	Days    int    `json:"days"`
	People  int    `json:"people"`
}

// PlanResponse is the free-text itinerary returned by the planning endpoint.
type PlanResponse struct {
	Plan string `json:"plan"`
}
