package bookcompiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the book metadata file inside a book directory.
const ManifestFile = "book.yaml"

// Manifest is the on-disk shape of book.yaml.
type Manifest struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle,omitempty"`
	Author   string `yaml:"author"`
	Cover    string `yaml:"cover,omitempty"`
}

type chapterMeta struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
}

// LoadBookDir reads book.yaml and every markdown file in dir, in file name
// order, as chapters. A chapter's title comes from its front matter, or
// from the file name when there is none.
func LoadBookDir(dir string) (Book, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return Book{}, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Book{}, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Title == "" || m.Author == "" {
		return Book{}, fmt.Errorf("manifest %s: title and author are required", filepath.Join(dir, ManifestFile))
	}

	files, err := markdownFiles(dir)
	if err != nil {
		return Book{}, err
	}

	book := Book{Title: m.Title, Subtitle: m.Subtitle, Author: m.Author, CoverImagePath: m.Cover}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return Book{}, fmt.Errorf("reading chapter %s: %w", file, err)
		}
		var meta chapterMeta
		body, err := frontmatter.Parse(bytes.NewReader(content), &meta)
		if err != nil {
			return Book{}, fmt.Errorf("parsing front matter of %s: %w", file, err)
		}
		title := meta.Title
		if title == "" {
			title = titleFromFilename(file)
		}
		book.Chapters = append(book.Chapters, Chapter{Title: title, Content: string(body)})
	}
	return book, nil
}

// SaveBookDir writes book as a directory LoadBookDir can read back:
// book.yaml plus one numbered markdown file per chapter.
func SaveBookDir(dir string, book Book, descriptions []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating book directory: %w", err)
	}
	manifest, err := yaml.Marshal(Manifest{
		Title:    book.Title,
		Subtitle: book.Subtitle,
		Author:   book.Author,
		Cover:    book.CoverImagePath,
	})
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), manifest, 0o644); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	for i, ch := range book.Chapters {
		meta := chapterMeta{Title: ch.Title}
		if i < len(descriptions) {
			meta.Description = descriptions[i]
		}
		head, err := yaml.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encoding chapter %d front matter: %w", i+1, err)
		}
		var buf bytes.Buffer
		buf.WriteString("---\n")
		buf.Write(head)
		buf.WriteString("---\n\n")
		buf.WriteString(ch.Content)
		if !strings.HasSuffix(ch.Content, "\n") {
			buf.WriteString("\n")
		}
		name := filepath.Join(dir, fmt.Sprintf("%02d_%s.md", i+1, slug(ch.Title)))
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("saving chapter %d: %w", i+1, err)
		}
	}
	return nil
}

func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading book directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no markdown files found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// titleFromFilename turns "03_the-long_road.md" into "the long road".
func titleFromFilename(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.TrimLeftFunc(name, func(r rune) bool {
		return unicode.IsDigit(r) || r == '_' || r == '-' || r == ' '
	})
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}

func slug(title string) string {
	var b strings.Builder
	lastSep := true
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			lastSep = false
			continue
		}
		if !lastSep {
			b.WriteRune('_')
			lastSep = true
		}
	}
	s := strings.TrimSuffix(b.String(), "_")
	if s == "" {
		return "chapter"
	}
	if len(s) > 40 {
		s = strings.TrimSuffix(s[:40], "_")
	}
	return s
}
