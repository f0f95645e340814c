package stubapi

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Thumbnail parameters match the original image processor defaults.
const (
	thumbnailMaxWidth = 400
	thumbnailQuality  = 85
)

type storedImage struct {
	data      []byte
	mimeType  string
	filename  string
	thumbnail []byte // lazily generated; nil until first thumbnail request
}

func (s *Server) storeImage(file multipart.File, header *multipart.FileHeader) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.images[id] = &storedImage{
		data:     data,
		mimeType: mimeType,
		filename: header.Filename,
	}
	s.mu.Unlock()
	return id, nil
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.RLock()
	img, ok := s.images[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}

	w.Header().Set("Content-Type", img.mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s", img.filename))
	_, _ = w.Write(img.data)
}

// handleGetThumbnail serves the downscaled thumbnail, falling back to the
// full image when the source cannot be decoded. The fallback must not be
// cached or browsers would never re-fetch the real thumbnail.
func (s *Server) handleGetThumbnail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	img, ok := s.images[id]
	if ok && img.thumbnail == nil {
		if thumb, thumbOK := makeThumbnail(img.data); thumbOK {
			img.thumbnail = thumb
		}
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}

	isThumb := img.thumbnail != nil
	data := img.thumbnail
	mimeType := "image/jpeg"
	if !isThumb {
		data = img.data
		mimeType = img.mimeType
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=thumb_%s", img.filename))
	w.Header().Set("X-Is-Thumbnail", strconv.FormatBool(isThumb))
	if isThumb {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	_, _ = w.Write(data)
}

// makeThumbnail downscales to at most thumbnailMaxWidth wide, preserving the
// aspect ratio, and re-encodes as JPEG.
func makeThumbnail(data []byte) ([]byte, bool) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}

	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, false
	}

	if w > thumbnailMaxWidth {
		scale := float64(thumbnailMaxWidth) / float64(w)
		newH := int(float64(h) * scale)
		if newH < 1 {
			newH = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, thumbnailMaxWidth, newH))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
		src = dst
	}

	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, src, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
