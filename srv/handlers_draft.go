package srv

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gorilla/websocket"

	bookforge "github.com/opd-ai/bookforge/src"
	"github.com/opd-ai/bookforge/srv/jobs"
	"github.com/opd-ai/bookforge/store"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS already allows every origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

type draftRequest struct {
	bookforge.OutlineRequest
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
}

func (r draftRequest) Validate() error {
	return validation.ValidateStruct(&r.OutlineRequest,
		validation.Field(&r.OutlineRequest.Topic, validation.Required.Error("Topic is required")),
	)
}

// handleStartDraft queues a whole-book draft and returns its job ID. The
// finished draft is stored as a new book owned by the caller.
func (s *Server) handleStartDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
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
	user := currentUser(r)
	if strings.TrimSpace(req.Author) == "" {
		req.Author = user.Name
	}

	job := s.jobs.Create(user.ID)
	go s.runDraft(gen, job, req)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"message": "Book generation started",
		"jobId":   job.ID,
	})
}

func (s *Server) runDraft(gen *bookforge.Generator, job *jobs.Job, req draftRequest) {
	log := s.log.With("job_id", job.ID, "user_id", job.UserID)
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.cfg.DraftTimeout > 0 {
		ctx, cancel = context.WithTimeout(s.baseCtx, s.cfg.DraftTimeout)
	} else {
		ctx, cancel = context.WithCancel(s.baseCtx)
	}
	defer cancel()

	job.Start()
	draft, err := bookforge.DraftBook(ctx, gen, req.OutlineRequest, req.Title, req.Subtitle, req.Author, job)
	if err != nil {
		log.Error("draft failed", "error", err, "chapters", len(draft.Chapters))
		job.Fail(err)
		return
	}

	book := &store.Book{
		UserID:   job.UserID,
		Title:    draft.Title,
		Subtitle: draft.Subtitle,
		Author:   draft.Author,
	}
	for i, content := range draft.Chapters {
		book.Chapters = append(book.Chapters, store.Chapter{
			Title:       draft.Outline[i].Title,
			Description: draft.Outline[i].Description,
			Content:     content,
		})
	}
	if err := s.books.Create(ctx, nil, book); err != nil {
		log.Error("storing draft", "error", err)
		job.Fail(err)
		return
	}
	log.Info("draft stored", "book_id", book.ID, "chapters", len(book.Chapters))
	job.Finish(book.ID)
}

func (s *Server) ownedJob(r *http.Request) (*jobs.Job, error) {
	job, ok := s.jobs.Get(chi.URLParam(r, "jobID"))
	if !ok {
		return nil, newAPIError(http.StatusNotFound, "Job not found", nil)
	}
	if job.UserID != currentUser(r).ID {
		return nil, newAPIError(http.StatusUnauthorized, "Not authorized to view this job", nil)
	}
	return job, nil
}

func (s *Server) handleDraftStatus(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job.Status())
}

// handleDraftSocket replays a job's progress over a websocket and then
// follows it until the job finishes or the client goes away.
func (s *Server) handleDraftSocket(w http.ResponseWriter, r *http.Request) {
	job, err := s.ownedJob(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "job_id", job.ID, "error", err)
		return
	}
	defer conn.Close()

	history, updates, cancel := job.Subscribe()
	defer cancel()

	gone := make(chan struct{})
	go s.readUntilClosed(conn, job.ID, gone)

	for _, msg := range history {
		if err := writeMessage(conn, msg); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(job.Status().State)))
				return
			}
			if err := writeMessage(conn, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			return
		}
	}
}

func writeMessage(conn *websocket.Conn, msg jobs.Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readUntilClosed drains client frames so pongs and close frames are
// processed, and closes gone when the connection drops.
func (s *Server) readUntilClosed(conn *websocket.Conn, jobID string, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("websocket closed", "job_id", jobID, "error", err)
			}
			return
		}
	}
}
