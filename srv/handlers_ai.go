package srv

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	bookforge "github.com/opd-ai/bookforge/src"
)

type outlineRequest struct {
	bookforge.OutlineRequest
}

func (r outlineRequest) Validate() error {
	return validation.ValidateStruct(&r.OutlineRequest,
		validation.Field(&r.OutlineRequest.Topic, validation.Required.Error("Topic is required")),
	)
}

type chapterRequest struct {
	bookforge.ChapterRequest
}

func (r chapterRequest) Validate() error {
	return validation.ValidateStruct(&r.ChapterRequest,
		validation.Field(&r.ChapterRequest.ChapterTitle, validation.Required.Error("Chapter title is required")),
	)
}

func (s *Server) generator() (*bookforge.Generator, error) {
	if s.gen == nil {
		return nil, newAPIError(http.StatusServiceUnavailable, "AI generation is not configured", nil)
	}
	return s.gen, nil
}

func (s *Server) handleGenerateOutline(w http.ResponseWriter, r *http.Request) {
	var req outlineRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		s.fail(w, r, err)
		return
	}
	gen, err := s.generator()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	outline, err := gen.GenerateOutline(r.Context(), req.OutlineRequest)
	switch {
	case errors.Is(err, bookforge.ErrMissingTopic):
		s.fail(w, r, badRequest("Topic is required"))
	case errors.Is(err, bookforge.ErrNoOutline):
		s.fail(w, r, newAPIError(http.StatusInternalServerError, "Invalid AI response format", err))
	case errors.Is(err, bookforge.ErrInvalidOutline):
		s.fail(w, r, newAPIError(http.StatusInternalServerError,
			"Failed to generate a valid outline. The AI response was not valid JSON", err))
	case err != nil:
		s.fail(w, r, newAPIError(http.StatusInternalServerError, "Server Error during AI outline", err))
	default:
		writeJSON(w, http.StatusOK, map[string]any{"outline": outline})
	}
}

func (s *Server) handleGenerateChapter(w http.ResponseWriter, r *http.Request) {
	var req chapterRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validate(req); err != nil {
		s.fail(w, r, err)
		return
	}
	gen, err := s.generator()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	content, err := gen.GenerateChapterContent(r.Context(), req.ChapterRequest)
	switch {
	case errors.Is(err, bookforge.ErrMissingChapterTitle):
		s.fail(w, r, badRequest("Chapter title is required"))
	case err != nil:
		s.fail(w, r, newAPIError(http.StatusInternalServerError, "Server Error during AI chapter generation", err))
	default:
		writeJSON(w, http.StatusOK, map[string]any{"content": content})
	}
}
