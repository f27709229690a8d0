package bookforge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/bookforge/logger"
)

var (
	ErrMissingTopic        = errors.New("topic is required")
	ErrMissingChapterTitle = errors.New("chapter title is required")
	// ErrNoOutline means the reply held no JSON array at all.
	ErrNoOutline = errors.New("no JSON array in model response")
	// ErrInvalidOutline means the array was found but did not decode.
	ErrInvalidOutline = errors.New("model response is not a valid outline")
)

// dropper is implemented by clients that can evict one cached reply.
type dropper interface {
	Drop(systemPrompt, userPrompt string)
}

// Generator produces outlines and chapter text. Outline replies go through
// outlines, which may be a CachedClient; chapters always hit the model.
type Generator struct {
	outlines Client
	chapters Client
	log      *logger.Logger
}

func NewGenerator(outlines, chapters Client, log *logger.Logger) *Generator {
	if chapters == nil {
		chapters = outlines
	}
	return &Generator{
		outlines: outlines,
		chapters: chapters,
		log:      logger.OrNop(log).With("component", "generator"),
	}
}

func (g *Generator) GenerateOutline(ctx context.Context, req OutlineRequest) ([]OutlineEntry, error) {
	req = req.normalize()
	if req.Topic == "" {
		return nil, ErrMissingTopic
	}
	prompt := outlinePrompt(req)
	reply, err := g.outlines.SendMessage(ctx, outlineSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating outline: %w", err)
	}
	outline, err := ParseOutline(reply)
	if err != nil {
		g.log.Warn("unusable outline reply", "topic", req.Topic, "error", err, "reply_len", len(reply))
		if d, ok := g.outlines.(dropper); ok {
			d.Drop(outlineSystemPrompt, prompt)
		}
		return nil, err
	}
	g.log.Info("outline generated", "topic", req.Topic, "chapters", len(outline))
	return outline, nil
}

func (g *Generator) GenerateChapterContent(ctx context.Context, req ChapterRequest) (string, error) {
	req = req.normalize()
	if req.ChapterTitle == "" {
		return "", ErrMissingChapterTitle
	}
	reply, err := g.chapters.SendMessage(ctx, chapterSystemPrompt, chapterPrompt(req))
	if err != nil {
		return "", fmt.Errorf("generating chapter %q: %w", req.ChapterTitle, err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}

// ParseOutline decodes the text between the first '[' and the last ']' of
// reply as a list of outline entries. An empty list is rejected.
func ParseOutline(reply string) ([]OutlineEntry, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoOutline
	}
	var outline []OutlineEntry
	if err := json.Unmarshal([]byte(reply[start:end+1]), &outline); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
	}
	if len(outline) == 0 {
		return nil, fmt.Errorf("%w: no chapters", ErrInvalidOutline)
	}
	return outline, nil
}
