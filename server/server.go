// Package server paints images on request over HTTP: a multipart upload in,
// a JSON body with the base64 PNG and progress GIF out.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wbrown/finch"
)

// DefaultMaxResponseBytes is the largest response body returned; larger
// results are replaced by an error.
const DefaultMaxResponseBytes = 30 << 20

// maxUploadBytes bounds the request body.
const maxUploadBytes = 32 << 20

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type",
	"Access-Control-Max-Age":       "3600",
}

// Response is the JSON body of every reply.
type Response struct {
	ResultImage string `json:"result_image,omitempty"`
	ResultGIF   string `json:"result_gif,omitempty"`
	Error       string `json:"error,omitempty"`
	StatusCode  int    `json:"status_code"`
}

// Painter paints one target in the given style and returns the encoded
// final PNG and, optionally, the progress GIF.
type Painter interface {
	Paint(ctx context.Context, image []byte, style finch.Style) (png, gif []byte, err error)
}

// Server handles paint requests.
type Server struct {
	painter          Painter
	maxResponseBytes int
}

// New returns a server painting with p.
func New(p Painter) *Server {
	return &Server{painter: p, maxResponseBytes: DefaultMaxResponseBytes}
}

// SetMaxResponseBytes changes the response size ceiling.
func (s *Server) SetMaxResponseBytes(n int) { s.maxResponseBytes = n }

// Handler returns the HTTP handler of s.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", s.handlePaint)
	mux.HandleFunc("OPTIONS /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return &logged{handler: &cors{handler: mux}}
}

func (s *Server) handlePaint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondWithError(w, "Could not parse request.")
		return
	}

	name := r.FormValue("brush_set")
	if name == "" {
		s.respondWithError(w, "No Brush Set specified in request.")
		return
	}
	style, err := finch.ParseStyle(name)
	if err != nil {
		s.respondWithError(w, "Unknown Brush Set "+name+".")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.respondWithError(w, "No Image specified in request.")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		s.respondWithError(w, "Could not parse image data.")
		return
	}

	png, gif, err := s.painter.Paint(r.Context(), data, style)
	switch {
	case errors.Is(err, finch.ErrEmptyImage):
		finch.Logger().Info("rejected image", "error", err)
		s.respondWithError(w, "Could not parse image data.")
		return
	case err != nil:
		finch.Logger().Error("processing failed", "error", err)
		s.respondWithError(w, "Process on server failed.")
		return
	}

	resp := Response{ResultImage: base64.StdEncoding.EncodeToString(png)}
	if gif != nil {
		resp.ResultGIF = base64.StdEncoding.EncodeToString(gif)
	}
	finch.Logger().Info("result sizes", "image_bytes", len(png), "gif_bytes", len(gif))
	s.respond(w, resp, http.StatusOK)
}

// respond writes resp with code, or an error body if the encoded response
// exceeds the size ceiling.
func (s *Server) respond(w http.ResponseWriter, resp Response, code int) {
	resp.StatusCode = code
	body, err := json.Marshal(resp)
	if err != nil {
		finch.Logger().Error("error encoding response", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	finch.Logger().Info("response size", "bytes", len(body), "limit", s.maxResponseBytes)
	if len(body) > s.maxResponseBytes {
		s.respondWithError(w, "Result too big to return... Try different settings and images!")
		return
	}
	writeJSON(w, body, code)
}

// respondWithError writes an error body. Error bodies are never subject to
// the size ceiling.
func (s *Server) respondWithError(w http.ResponseWriter, message string) {
	finch.Logger().Info("error response", "message", message)
	body, err := json.Marshal(Response{Error: message, StatusCode: http.StatusBadRequest})
	if err != nil {
		http.Error(w, message, http.StatusBadRequest)
		return
	}
	writeJSON(w, body, http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, body []byte, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		finch.Logger().Warn("error writing response", "error", err)
	}
}

type cors struct {
	handler http.Handler
}

func (c *cors) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	c.handler.ServeHTTP(w, r)
}

type logged struct {
	handler http.Handler
}

func (l *logged) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	l.handler.ServeHTTP(w, r)
	finch.Logger().Info("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
}
