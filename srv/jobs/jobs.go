// Package jobs tracks long-running book drafts and fans their progress out
// to any number of listeners.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opd-ai/bookforge/logger"
)

type State string

const (
	StateQueued     State = "queued"
	StateGenerating State = "generating"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Message is one progress event. It is also the websocket wire format.
type Message struct {
	Type      string    `json:"type"`
	Status    State     `json:"status"`
	Message   string    `json:"message"`
	BookID    string    `json:"bookId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	TypeProgress = "progress"
	TypeState    = "state"
)

// Status is a point-in-time view of a job.
type Status struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	BookID    string    `json:"bookId,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	Messages  []Message `json:"messages"`
}

const subscriberBuffer = 64

type Job struct {
	ID        string
	UserID    string
	StartTime time.Time

	mu       sync.RWMutex
	state    State
	bookID   string
	err      error
	history  []Message
	subs     map[chan Message]struct{}
	done     chan struct{}
	finished bool
}

func newJob(userID string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		UserID:    userID,
		StartTime: time.Now(),
		state:     StateQueued,
		subs:      make(map[chan Message]struct{}),
		done:      make(chan struct{}),
	}
}

// UpdateOutput records one progress line.
func (j *Job) UpdateOutput(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.emitLocked(TypeProgress, message)
}

func (j *Job) Start() {
	j.transition(StateGenerating, "Generating your book...", "", nil)
}

// Finish marks the job completed with the stored book's ID and releases
// every listener.
func (j *Job) Finish(bookID string) {
	j.transition(StateCompleted, "Book generation completed", bookID, nil)
}

func (j *Job) Fail(err error) {
	j.transition(StateError, "Book generation failed: "+err.Error(), "", err)
}

func (j *Job) transition(state State, message, bookID string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.finished {
		return
	}
	j.state = state
	if bookID != "" {
		j.bookID = bookID
	}
	if err != nil {
		j.err = err
	}
	j.emitLocked(TypeState, message)

	if state == StateCompleted || state == StateError {
		j.finished = true
		close(j.done)
		for ch := range j.subs {
			close(ch)
		}
		j.subs = nil
	}
}

func (j *Job) emitLocked(typ, text string) {
	msg := Message{
		Type:      typ,
		Status:    j.state,
		Message:   text,
		BookID:    j.bookID,
		Timestamp: time.Now(),
	}
	j.history = append(j.history, msg)
	for ch := range j.subs {
		select {
		case ch <- msg:
		default:
			// a slow listener misses this line; it stays in history
		}
	}
}

// Subscribe returns the messages so far and a channel carrying the ones
// that follow. The channel is closed when the job finishes or cancel is
// called.
func (j *Job) Subscribe() (history []Message, updates <-chan Message, cancel func()) {
	j.mu.Lock()
	defer j.mu.Unlock()

	history = append([]Message(nil), j.history...)
	ch := make(chan Message, subscriberBuffer)
	if j.finished {
		close(ch)
		return history, ch, func() {}
	}
	j.subs[ch] = struct{}{}
	return history, ch, func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		if _, ok := j.subs[ch]; ok {
			delete(j.subs, ch)
			close(ch)
		}
	}
}

// Done is closed once the job completes or fails.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) Finished() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.finished
}

func (j *Job) Status() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	s := Status{
		ID:        j.ID,
		State:     j.state,
		BookID:    j.bookID,
		StartedAt: j.StartTime,
		Messages:  append([]Message(nil), j.history...),
	}
	if j.err != nil {
		s.Error = j.err.Error()
	}
	return s
}

// Manager owns every job the server knows about.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	log  *logger.Logger
}

func NewManager(log *logger.Logger) *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
		log:  logger.OrNop(log).With("component", "jobs"),
	}
}

func (m *Manager) Create(userID string) *Job {
	j := newJob(userID)
	m.mu.Lock()
	m.jobs[j.ID] = j
	m.mu.Unlock()
	m.log.Debug("job created", "job_id", j.ID, "user_id", userID)
	return j
}

func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[id]
	return j, ok
}

// Prune forgets finished jobs that started before threshold. Running jobs
// are kept regardless of age.
func (m *Manager) Prune(threshold time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, j := range m.jobs {
		if j.StartTime.Before(threshold) && j.Finished() {
			delete(m.jobs, id)
			n++
		}
	}
	return n
}

// Run prunes jobs older than maxAge every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Prune(time.Now().Add(-maxAge)); n > 0 {
				m.log.Info("pruned stale jobs", "count", n)
			}
		}
	}
}
