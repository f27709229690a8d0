package bookforge

import (
	"fmt"
	"strings"
)

const outlineSystemPrompt = `You are an expert book outline generator.
Return only a valid JSON array with no additional text, markdown, or formatting.
Each object must have exactly two keys: "title" and "description".`

const chapterSystemPrompt = `You are an expert writer. Write complete, well structured book chapters.
Use clear paragraph breaks. Use markdown headings (##) for sections, **bold** and *italic* for emphasis,
and numbered or bulleted lists where they help the reader. Do not add any preamble or closing remarks.`

func outlinePrompt(r OutlineRequest) string {
	var b strings.Builder
	b.WriteString("Create a comprehensive book outline based on the following requirements:\n")
	fmt.Fprintf(&b, "Topic: %q\n", r.Topic)
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %q\n", r.Description)
	}
	fmt.Fprintf(&b, "Writing Style: %s\n", r.Style)
	fmt.Fprintf(&b, "Number of Chapters: %d\n\n", r.NumChapters)
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "1. Generate exactly %d chapters.\n", r.NumChapters)
	b.WriteString("2. Each chapter title should be clear, engaging, and follow a logical progression.\n")
	b.WriteString("3. Each chapter description should be 2-3 sentences explaining the chapter content.\n")
	b.WriteString("4. Ensure chapters build upon each other coherently.\n")
	fmt.Fprintf(&b, "5. Match the %q writing style in your titles and descriptions.\n\n", r.Style)
	b.WriteString(`Example structure:
[
  {"title": "Chapter 1: Introduction to the Topic", "description": "A comprehensive overview introducing the main concepts."},
  {"title": "Chapter 2: Core Principles", "description": "Explores the fundamental principles with real-world examples."}
]
Generate the outline now.`)
	return b.String()
}

func chapterPrompt(r ChapterRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a complete chapter in a %s style for a book with the following specifications:\n", r.Style)
	fmt.Fprintf(&b, "Chapter Title: %q\n", r.ChapterTitle)
	if r.ChapterDescription != "" {
		fmt.Fprintf(&b, "Chapter Description: %q\n", r.ChapterDescription)
	}
	b.WriteString("Target Length: comprehensive and detailed content (aim for 1500-2000 words)\n\n")
	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "1. Write in a %s tone throughout the chapter.\n", strings.ToLower(r.Style))
	b.WriteString("2. Structure the content with clear sections and smooth transitions.\n")
	b.WriteString("3. Include relevant examples, explanations, or anecdotes as appropriate for the style.\n")
	b.WriteString("4. Ensure the content flows logically from introduction to conclusion.\n")
	if r.ChapterDescription != "" {
		b.WriteString("5. Cover all points mentioned in the chapter description.\n")
	}
	b.WriteString("\nBegin with a compelling opening paragraph and end with a strong conclusion or a transition to the next chapter.")
	return b.String()
}

func coverPrompt(title, subtitle string) string {
	prompt := fmt.Sprintf("Book cover illustration for %q", title)
	if strings.TrimSpace(subtitle) != "" {
		prompt += fmt.Sprintf(", %s", subtitle)
	}
	return prompt + ". Striking central image, rich colors, professional publishing quality, no text, no letters"
}
