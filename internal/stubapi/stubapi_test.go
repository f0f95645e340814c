package stubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"travelshare/internal/client"
	"travelshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tinyPNG returns an in-memory PNG with the requested dimensions.
func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func postMultipart(t *testing.T, url, username, body string, imageData []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("username", username))
	require.NoError(t, w.WriteField("body", body))
	if imageData != nil {
		part, err := w.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		_, err = part.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	resp, err := http.Post(url+"/posts/", w.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func TestStub_CreateAndListPosts(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	resp := postMultipart(t, srv.URL, "ana", "what a wonderful beach day", nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		PostID    string `json:"post_id"`
		ImageID   any    `json:"image_id"`
		Sentiment string `json:"sentiment"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.PostID)
	assert.Nil(t, created.ImageID)
	assert.Equal(t, models.SentimentPositive, created.Sentiment)

	// the typed client can read it back
	c := client.New(srv.URL)
	posts, err := c.ListPosts(context.Background(), client.Filter{})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "ana", posts[0].Username)
	assert.Equal(t, models.SentimentPositive, posts[0].SentimentLabel)
}

func TestStub_ListFilters(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	for _, p := range []struct{ user, body string }{
		{"ana", "the beach was wonderful"},
		{"bo", "the museum was terrible"},
		{"cleo", "plain city walk"},
	} {
		resp := postMultipart(t, srv.URL, p.user, p.body, nil)
		_ = resp.Body.Close()
	}

	c := client.New(srv.URL)
	ctx := context.Background()

	byKeyword, err := c.ListPosts(ctx, client.Filter{Keyword: "beach"})
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	assert.Equal(t, "ana", byKeyword[0].Username)

	// keyword searches the body only, never usernames
	byUsername, err := c.ListPosts(ctx, client.Filter{Keyword: "cleo"})
	require.NoError(t, err)
	assert.Empty(t, byUsername)

	bySentiment, err := c.ListPosts(ctx, client.Filter{Sentiment: models.SentimentNegative})
	require.NoError(t, err)
	require.Len(t, bySentiment, 1)
	assert.Equal(t, "bo", bySentiment[0].Username)

	both, err := c.ListPosts(ctx, client.Filter{Keyword: "museum", Sentiment: models.SentimentPositive})
	require.NoError(t, err)
	assert.Empty(t, both)
}

func TestStub_ListNewestFirst(t *testing.T) {
	s := New()
	s.Seed(5)
	srv := httptest.NewServer(s)
	defer srv.Close()

	posts, err := client.New(srv.URL).ListPosts(context.Background(), client.Filter{})
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for i := 1; i < len(posts); i++ {
		assert.GreaterOrEqual(t, posts[i-1].CreatedAt, posts[i].CreatedAt, "posts must be newest first")
	}
}

func TestStub_ListClampsNegativePaging(t *testing.T) {
	s := New()
	s.Seed(3)
	srv := httptest.NewServer(s)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/posts/?offset=-1&limit=-5")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Posts []models.Post `json:"posts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Posts, 3)
}

func TestStub_CreateRequiresUsernameAndBody(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	resp := postMultipart(t, srv.URL, "", "body only", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestStub_ImageAndThumbnail(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	resp := postMultipart(t, srv.URL, "ana", "pier at dusk", tinyPNG(t, 800, 600))
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		ImageID string `json:"image_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ImageID)

	c := client.New(srv.URL)

	full, err := http.Get(c.ImageURL(created.ImageID))
	require.NoError(t, err)
	defer func() { _ = full.Body.Close() }()
	assert.Equal(t, http.StatusOK, full.StatusCode)
	assert.Equal(t, "image/png", full.Header.Get("Content-Type"))

	thumb, err := http.Get(c.ThumbnailURL(created.ImageID))
	require.NoError(t, err)
	defer func() { _ = thumb.Body.Close() }()
	assert.Equal(t, http.StatusOK, thumb.StatusCode)
	assert.Equal(t, "image/jpeg", thumb.Header.Get("Content-Type"))
	assert.Equal(t, "true", thumb.Header.Get("X-Is-Thumbnail"))
	assert.Contains(t, thumb.Header.Get("Cache-Control"), "immutable")

	// the served thumbnail is at most 400px wide
	decoded, _, err := image.Decode(thumb.Body)
	require.NoError(t, err)
	assert.LessOrEqual(t, decoded.Bounds().Dx(), 400)
}

func TestStub_ThumbnailFallbackForUndecodableImage(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	resp := postMultipart(t, srv.URL, "ana", "broken upload", []byte("not an image"))
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		ImageID string `json:"image_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	thumb, err := http.Get(client.New(srv.URL).ThumbnailURL(created.ImageID))
	require.NoError(t, err)
	defer func() { _ = thumb.Body.Close() }()
	assert.Equal(t, "false", thumb.Header.Get("X-Is-Thumbnail"))
	assert.Equal(t, "no-store", thumb.Header.Get("Cache-Control"))
}

func TestStub_ImageNotFound(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/images/unknown-id")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStub_PlanTrip(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	plan, err := client.New(srv.URL).PlanTrip(context.Background(), models.PlanRequest{
		City: "Lisbon", Concept: "food", Budget: 900, Days: 3, People: 2,
	})
	require.NoError(t, err)

	assert.Contains(t, plan, "Lisbon")
	assert.Contains(t, plan, "Day 1:")
	assert.Contains(t, plan, "Day 3:")
	assert.Equal(t, 3, strings.Count(plan, "Day "))
}

func TestStub_Docs(t *testing.T) {
	srv := httptest.NewServer(New())
	defer srv.Close()

	require.NoError(t, client.New(srv.URL).Ping(context.Background()))
}

func TestAnalyzeSentiment(t *testing.T) {
	tests := []struct {
		body  string
		label string
	}{
		{"what a wonderful amazing trip", models.SentimentPositive},
		{"terrible awful experience", models.SentimentNegative},
		{"took the train to the city", models.SentimentNeutral},
		{"great view but horrible food, still great", models.SentimentPositive},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			label, score := analyzeSentiment(tt.body)
			assert.Equal(t, tt.label, label)
			assert.GreaterOrEqual(t, score, 0.5)
			assert.LessOrEqual(t, score, 0.99)
		})
	}
}
