package srv

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	bookforge "github.com/opd-ai/bookforge/src"
	"github.com/opd-ai/bookforge/store"
)

const uploadsPrefix = "/uploads/"

type chapterPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

type createBookRequest struct {
	Title    string           `json:"title"`
	Author   string           `json:"author"`
	Subtitle string           `json:"subtitle"`
	Chapters []chapterPayload `json:"chapters"`
}

func (r createBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error(msgMissingFields)),
		validation.Field(&r.Author, validation.Required.Error(msgMissingFields)),
	)
}

type updateBookRequest struct {
	Title    *string           `json:"title"`
	Author   *string           `json:"author"`
	Subtitle *string           `json:"subtitle"`
	Chapters *[]chapterPayload `json:"chapters"`
}

type generateCoverRequest struct {
	Prompt string `json:"prompt"`
}

func toChapters(in []chapterPayload) []store.Chapter {
	out := make([]store.Chapter, 0, len(in))
	for _, c := range in {
		out = append(out, store.Chapter{Title: c.Title, Description: c.Description, Content: c.Content})
	}
	return out
}

// ownedBook loads the book named in the URL and checks the caller owns it.
// action completes the "Not authorized to ... this book" message.
func (s *Server) ownedBook(r *http.Request, action string) (*store.Book, error) {
	book, err := s.books.GetByID(r.Context(), nil, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newAPIError(http.StatusNotFound, "Book not found", err)
		}
		return nil, err
	}
	if book.UserID != currentUser(r).ID {
		return nil, newAPIError(http.StatusUnauthorized, fmt.Sprintf("Not authorized to %s this book", action), nil)
	}
	return book, nil
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req createBookRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Author = strings.TrimSpace(req.Author)
	if err := validate(req); err != nil {
		s.fail(w, r, err)
		return
	}
	book := &store.Book{
		UserID:   currentUser(r).ID,
		Title:    req.Title,
		Author:   req.Author,
		Subtitle: req.Subtitle,
		Chapters: toChapters(req.Chapters),
	}
	if err := s.books.Create(r.Context(), nil, book); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Book created successfully",
		"book":    book,
	})
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.books.ListByUser(r.Context(), nil, currentUser(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": books})
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.ownedBook(r, "view")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"book": book})
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.ownedBook(r, "update")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req updateBookRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if (req.Title != nil && strings.TrimSpace(*req.Title) == "") ||
		(req.Author != nil && strings.TrimSpace(*req.Author) == "") {
		s.fail(w, r, badRequest(msgMissingFields))
		return
	}
	patch := store.BookPatch{Title: req.Title, Author: req.Author, Subtitle: req.Subtitle}
	if req.Chapters != nil {
		chapters := toChapters(*req.Chapters)
		patch.Chapters = &chapters
	}
	updated, err := s.books.Update(r.Context(), book.ID, patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Book updated successfully",
		"updateBook": updated,
	})
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.ownedBook(r, "delete")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.books.Delete(r.Context(), book.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Book deleted successfully"})
}

func (s *Server) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	book, err := s.ownedBook(r, "update")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.fail(w, r, badRequest("No image file provided"))
		return
	}
	file, _, err := r.FormFile("coverImage")
	if err != nil {
		s.fail(w, r, badRequest("No image file provided"))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		s.fail(w, r, badRequest("Image file is too large"))
		return
	}
	s.storeCover(w, r, book, data, "Book cover updated successfully")
}

func (s *Server) handleGenerateCover(w http.ResponseWriter, r *http.Request) {
	book, err := s.ownedBook(r, "update")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if s.images == nil {
		s.fail(w, r, newAPIError(http.StatusServiceUnavailable, "Cover generation is not configured", nil))
		return
	}
	var req generateCoverRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	data, err := bookforge.GenerateCover(s.images, strings.TrimSpace(req.Prompt), book.Title, book.Subtitle, nil)
	if err != nil {
		s.fail(w, r, newAPIError(http.StatusBadGateway, "Cover generation failed", err))
		return
	}
	s.storeCover(w, r, book, data, "Book cover generated successfully")
}

func (s *Server) storeCover(w http.ResponseWriter, r *http.Request, book *store.Book, data []byte, message string) {
	name, err := bookforge.SaveImage(data, s.cfg.UploadsDir)
	if err != nil {
		if errors.Is(err, bookforge.ErrUnsupportedImage) {
			s.fail(w, r, badRequest("Only jpeg, png and gif images are allowed"))
			return
		}
		s.fail(w, r, err)
		return
	}
	updated, err := s.books.SetCover(r.Context(), nil, book.ID, uploadsPrefix+name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":     message,
		"updatedBook": updated,
	})
}
