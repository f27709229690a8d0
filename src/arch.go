package bookforge

import "strings"

// Config carries the settings shared by the generation clients.
type Config struct {
	APIKey     string
	HordeKey   string
	OutputDir  string
	MaxRetries int
}

// OutlineRequest describes the book an outline is generated for.
type OutlineRequest struct {
	Topic       string `json:"topic"`
	Style       string `json:"style"`
	NumChapters int    `json:"numChapters"`
	Description string `json:"description"`
}

// OutlineEntry is one planned chapter.
type OutlineEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ChapterRequest describes one chapter to write.
type ChapterRequest struct {
	ChapterTitle       string `json:"chapterTitle"`
	ChapterDescription string `json:"chapterDescription"`
	Style              string `json:"style"`
}

// Draft is a generated book before it is saved or exported.
type Draft struct {
	Title    string
	Subtitle string
	Author   string
	Outline  []OutlineEntry
	Chapters []string
}

const (
	DefaultStyle       = "Informative"
	DefaultNumChapters = 5
	MaxNumChapters     = 50
)

// normalize fills defaults and bounds the chapter count.
func (r OutlineRequest) normalize() OutlineRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	if strings.TrimSpace(r.Style) == "" {
		r.Style = DefaultStyle
	}
	switch {
	case r.NumChapters <= 0:
		r.NumChapters = DefaultNumChapters
	case r.NumChapters > MaxNumChapters:
		r.NumChapters = MaxNumChapters
	}
	return r
}

func (r ChapterRequest) normalize() ChapterRequest {
	r.ChapterTitle = strings.TrimSpace(r.ChapterTitle)
	if strings.TrimSpace(r.Style) == "" {
		r.Style = DefaultStyle
	}
	return r
}
