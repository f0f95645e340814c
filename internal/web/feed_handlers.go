package web

import (
	"io"
	"strings"
	"time"

	"travelshare/internal/client"
	"travelshare/internal/middleware"
	"travelshare/internal/models"

	"github.com/gofiber/fiber/v2"
)

// usernameCookie retains the last successfully used author name across visits.
const usernameCookie = "ts_username"

const (
	msgLoadFailed   = "Failed to load posts."
	msgCreateFailed = "Failed to create post."
)

type feedPage struct {
	Keyword    string
	Sentiment  string
	Sentiments []string

	Username string
	Body     string

	Posts     []feedPost
	LoadError string
	FormError string

	Overlay *imageOverlay
}

type feedPost struct {
	models.Post
	ThumbnailURL string
	OpenURL      string
}

type imageOverlay struct {
	ImageURL string
	CloseURL string
}

// Feed handles GET /. It fetches posts with the current filters on every
// request and renders the feed page, optionally with the image overlay open.
func (s *Server) Feed(c *fiber.Ctx) error {
	keyword := c.Query("keyword")
	sentiment := c.Query("sentiment")

	page := s.loadFeed(c, keyword, sentiment)
	page.Username = c.Cookies(usernameCookie)

	if imageID := c.Query("image"); imageID != "" {
		page.Overlay = &imageOverlay{
			ImageURL: s.api.ImageURL(imageID),
			CloseURL: feedURL(keyword, sentiment, ""),
		}
	}

	return c.Render("feed", page)
}

// CreatePost handles the post form submission. Blank username or body never
// reaches the backend; the page re-renders with a validation message instead.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	keyword := c.FormValue("keyword")
	sentiment := c.FormValue("sentiment")
	username := strings.TrimSpace(c.FormValue("username"))
	body := strings.TrimSpace(c.FormValue("body"))

	if username == "" || body == "" {
		page := s.loadFeed(c, keyword, sentiment)
		page.Username = c.FormValue("username")
		page.Body = c.FormValue("body")
		page.FormError = "Username and message are both required."
		return c.Status(fiber.StatusBadRequest).Render("feed", page)
	}

	in := client.CreatePostInput{Username: username, Body: body}
	if img, err := readImageUpload(c); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to read uploaded image", "error", err)
		return s.renderCreateFailed(c, keyword, sentiment, username, body)
	} else if img != nil {
		in.Image = img
	}

	created, err := s.api.CreatePost(ctx, in)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to create post",
			"error", err, "username", username)
		return s.renderCreateFailed(c, keyword, sentiment, username, body)
	}

	middleware.Logger.InfoContext(ctx, "post created",
		"post_id", created.PostID, "sentiment", created.Sentiment)

	c.Cookie(&fiber.Cookie{
		Name:     usernameCookie,
		Value:    username,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	// See Other keeps the active filters and clears the form by re-requesting
	return c.Redirect(feedURL(keyword, sentiment, ""), fiber.StatusSeeOther)
}

func (s *Server) renderCreateFailed(c *fiber.Ctx, keyword, sentiment, username, body string) error {
	page := s.loadFeed(c, keyword, sentiment)
	page.Username = username
	page.Body = body
	page.FormError = msgCreateFailed
	return c.Status(fiber.StatusBadGateway).Render("feed", page)
}

// loadFeed fetches posts for the given filters and assembles the base page
// model. Fetch failure yields an empty feed with the generic load message.
func (s *Server) loadFeed(c *fiber.Ctx, keyword, sentiment string) *feedPage {
	ctx := c.UserContext()
	page := &feedPage{
		Keyword:    keyword,
		Sentiment:  sentiment,
		Sentiments: models.SentimentLabels,
	}

	posts, err := s.api.ListPosts(ctx, client.Filter{Keyword: keyword, Sentiment: sentiment})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to load posts",
			"error", err, "keyword", keyword, "sentiment", sentiment)
		page.LoadError = msgLoadFailed
		return page
	}

	page.Posts = make([]feedPost, 0, len(posts))
	for _, p := range posts {
		fp := feedPost{Post: p}
		if p.HasImage() {
			fp.ThumbnailURL = s.api.ThumbnailURL(p.ImageID)
			fp.OpenURL = feedURL(keyword, sentiment, p.ImageID)
		}
		page.Posts = append(page.Posts, fp)
	}
	return page
}

// readImageUpload extracts the optional image file part from the form.
// A missing part is not an error.
func readImageUpload(c *fiber.Ctx) (*client.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &client.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     data,
	}, nil
}
