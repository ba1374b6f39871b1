package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/domain"
	"github.com/Karthikeyakonakalla/Virtual-Teaching-Assistant/internal/core/ports/driving"
)

// maxUploadBytes bounds multipart payloads (audio recordings, photos)
const maxUploadBytes = 32 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse represents a simple status response
type StatusResponse struct {
	Status string `json:"status"`
}

// VersionResponse represents the API version response
type VersionResponse struct {
	Version string `json:"version"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Query endpoints

// queryRequest is the JSON submission body. Exactly one of text, audio,
// or image must be set; audio and image carry base64 payloads.
type queryRequest struct {
	Text            string `json:"text"`
	Audio           string `json:"audio"`
	AudioFormat     string `json:"audio_format"`
	Image           string `json:"image"`
	ImageContext    string `json:"image_context"`
	Subject         string `json:"subject"`
	AllowUngrounded bool   `json:"allow_ungrounded"`
}

// handleSubmitQuery resolves a question in any modality. Accepts a JSON
// body or a multipart form with an "audio" or "image" file part.
func (s *Server) handleSubmitQuery(w http.ResponseWriter, r *http.Request) {
	req, err := parseSubmitRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.engine.Submit(r.Context(), *req)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// followUpRequest is a follow-up question on an answered query
type followUpRequest struct {
	Question string `json:"question"`
}

type followUpResponse struct {
	QueryID string `json:"query_id"`
	Answer  string `json:"answer"`
}

func (s *Server) handleFollowUp(w http.ResponseWriter, r *http.Request) {
	queryID := r.PathValue("id")

	var req followUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answer, err := s.engine.FollowUp(r.Context(), queryID, req.Question)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, followUpResponse{QueryID: queryID, Answer: answer})
}

type audioTextResponse struct {
	QueryID    string `json:"query_id"`
	SpeechText string `json:"speech_text"`
}

// handleAudioText returns the stored solution as speech-friendly plain
// text for TTS collaborators
func (s *Server) handleAudioText(w http.ResponseWriter, r *http.Request) {
	queryID := r.PathValue("id")

	text, err := s.engine.RenderAudioText(r.Context(), queryID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, audioTextResponse{QueryID: queryID, SpeechText: text})
}

type corpusStatsResponse struct {
	Version    string `json:"version"`
	Size       int    `json:"size"`
	Dimensions int    `json:"dimensions"`
}

func (s *Server) handleCorpusStats(w http.ResponseWriter, r *http.Request) {
	index := s.corpus.Active()
	writeJSON(w, http.StatusOK, corpusStatsResponse{
		Version:    index.Version(),
		Size:       index.Size(),
		Dimensions: index.Dimensions(),
	})
}

// Request parsing

func parseSubmitRequest(r *http.Request) (*driving.SubmitRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		return parseMultipartSubmit(r)
	}
	return parseJSONSubmit(r)
}

func parseJSONSubmit(r *http.Request) (*driving.SubmitRequest, error) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}

	var input domain.Input
	switch {
	case req.Text != "" && req.Audio == "" && req.Image == "":
		input = domain.TextInput{Text: req.Text}

	case req.Audio != "" && req.Text == "" && req.Image == "":
		payload, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			return nil, errors.New("audio must be base64 encoded")
		}
		format := req.AudioFormat
		if format == "" {
			format = "wav"
		}
		input = domain.AudioInput{Audio: payload, Format: format}

	case req.Image != "" && req.Text == "" && req.Audio == "":
		payload, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return nil, errors.New("image must be base64 encoded")
		}
		input = domain.ImageInput{Image: payload, Context: req.ImageContext}

	default:
		return nil, errors.New("exactly one of text, audio, or image is required")
	}

	return &driving.SubmitRequest{
		Input:           input,
		SubjectHint:     req.Subject,
		AllowUngrounded: req.AllowUngrounded,
	}, nil
}

func parseMultipartSubmit(r *http.Request) (*driving.SubmitRequest, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("invalid multipart form")
	}

	var input domain.Input

	if file, header, err := r.FormFile("audio"); err == nil {
		defer file.Close()
		payload, err := io.ReadAll(file)
		if err != nil {
			return nil, errors.New("failed to read audio upload")
		}
		format := r.FormValue("audio_format")
		if format == "" {
			format = strings.TrimPrefix(path.Ext(header.Filename), ".")
		}
		if format == "" {
			format = "wav"
		}
		input = domain.AudioInput{Audio: payload, Format: format}
	} else if file, _, err := r.FormFile("image"); err == nil {
		defer file.Close()
		payload, err := io.ReadAll(file)
		if err != nil {
			return nil, errors.New("failed to read image upload")
		}
		input = domain.ImageInput{Image: payload, Context: r.FormValue("image_context")}
	} else if text := r.FormValue("text"); text != "" {
		input = domain.TextInput{Text: text}
	} else {
		return nil, errors.New("exactly one of text, audio, or image is required")
	}

	return &driving.SubmitRequest{
		Input:           input,
		SubjectHint:     r.FormValue("subject"),
		AllowUngrounded: r.FormValue("allow_ungrounded") == "true",
	}, nil
}

// Error mapping

// statusForError maps domain sentinels onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnknownQuery),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUngroundedRefused):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrBackendTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrSynthesisFailure),
		errors.Is(err, domain.ErrGeneration),
		errors.Is(err, domain.ErrEmbedding),
		errors.Is(err, domain.ErrExtraction):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
