package web

import "net/url"

// feedURL builds a feed link carrying only the non-empty filter params, plus
// the overlay image id when one is open.
func feedURL(keyword, sentiment, imageID string) string {
	q := url.Values{}
	if keyword != "" {
		q.Set("keyword", keyword)
	}
	if sentiment != "" {
		q.Set("sentiment", sentiment)
	}
	if imageID != "" {
		q.Set("image", imageID)
	}
	if len(q) == 0 {
		return "/"
	}
	return "/?" + q.Encode()
}
