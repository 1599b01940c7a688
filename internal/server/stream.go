package server

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/ayusman/handstrike/internal/capture"
)

const (
	streamBoundary = "frame"
	// DefaultPreviewRate caps how many preview frames a viewer is sent per second.
	DefaultPreviewRate = 15
)

// StreamHandler serves the mirrored camera preview that sits behind the
// game view. Every viewer gets the newest frame the Runner published,
// dropping any it was too slow to take.
type StreamHandler struct {
	preview *capture.Latest
	gap     time.Duration
}

// NewStreamHandler creates a StreamHandler reading from preview at no more
// than rate frames per second.
func NewStreamHandler(preview *capture.Latest, rate int) *StreamHandler {
	if rate <= 0 {
		rate = DefaultPreviewRate
	}
	return &StreamHandler{preview: preview, gap: time.Second / time.Duration(rate)}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(streamBoundary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+streamBoundary)
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	var (
		seq  uint64
		last time.Time
	)
	for {
		if wait := h.gap - time.Since(last); wait > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(wait):
			}
		}

		jpeg, next, err := h.preview.Next(r.Context(), seq)
		if err != nil {
			return
		}
		seq, last = next, time.Now()

		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":   {"image/jpeg"},
			"Content-Length": {strconv.Itoa(len(jpeg))},
		})
		if err != nil {
			return
		}
		if _, err := part.Write(jpeg); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
