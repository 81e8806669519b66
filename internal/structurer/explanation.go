// Package structurer converts raw generated text into the typed records
// callers expect. The extractors are best-effort: they mine free text with
// bounded heuristics and fall back to documented defaults, never to
// missing required fields.
package structurer

import (
	"math"
	"regexp"
	"strings"

	"tutorgate-ai/internal/model"
)

var (
	numberedExampleRe = regexp.MustCompile(`(?i)example \d+:?[ \t]*`)
	boldExampleRe     = regexp.MustCompile(`(?i)\*\*example:?\*\*[ \t]*`)

	relatedHeadingRe = regexp.MustCompile(`(?im)^(?:related topics?|further learning):?[ \t]*\r?\n`)
	bulletLineRe     = regexp.MustCompile(`^[-•*0-9.)]+[ \t]*`)
)

// Explanation structures raw explanation text. Difficulty is the student
// level clamped to 1..10; read time assumes 200 words per minute with a
// one-minute floor.
func Explanation(content string, studentLevel int) model.Explanation {
	wordCount := len(strings.Fields(content))
	readTime := int(math.Round(float64(wordCount) / 200))
	if readTime < 1 {
		readTime = 1
	}

	return model.Explanation{
		Content:           content,
		Examples:          ExtractExamples(content),
		RelatedTopics:     ExtractRelatedTopics(content),
		Difficulty:        clamp(studentLevel, 1, 10),
		EstimatedReadTime: readTime,
	}
}

// ExtractExamples scans for "Example N: <title>" and "**Example:** <title>"
// markers, capturing each body up to the next marker or end of text. When
// no structured example exists but the word "example" appears, exactly one
// generic placeholder is emitted. At most 3 examples are returned,
// preserving discovery order.
func ExtractExamples(content string) []model.Example {
	examples := scanExamples(content, numberedExampleRe)
	examples = append(examples, scanExamples(content, boldExampleRe)...)

	if len(examples) == 0 && strings.Contains(strings.ToLower(content), "example") {
		examples = append(examples, model.Example{
			Title:   "Example",
			Content: "See explanation above for examples.",
		})
	}

	if len(examples) > 3 {
		examples = examples[:3]
	}
	return examples
}

func scanExamples(content string, marker *regexp.Regexp) []model.Example {
	locs := marker.FindAllStringIndex(content, -1)

	var out []model.Example
	for i, loc := range locs {
		end := len(content)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		segment := content[loc[1]:end]

		title := segment
		body := ""
		if nl := strings.IndexByte(segment, '\n'); nl >= 0 {
			title = segment[:nl]
			body = segment[nl+1:]
		}
		title = strings.TrimSpace(title)
		body = strings.TrimSpace(body)

		if title == "" && body == "" {
			continue
		}
		out = append(out, model.Example{Title: title, Content: body})
	}
	return out
}

// ExtractRelatedTopics captures the block under a "Related Topics:" or
// "Further Learning:" heading up to the next blank line, then takes each
// bulleted or numbered line as one topic. At most 5 topics are returned.
func ExtractRelatedTopics(content string) []string {
	var topics []string

	for _, loc := range relatedHeadingRe.FindAllStringIndex(content, -1) {
		block := content[loc[1]:]
		if end := strings.Index(block, "\n\n"); end >= 0 {
			block = block[:end]
		}

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" || !bulletLineRe.MatchString(line) {
				continue
			}
			if topic := strings.TrimSpace(bulletLineRe.ReplaceAllString(line, "")); topic != "" {
				topics = append(topics, topic)
			}
		}
	}

	if len(topics) > 5 {
		topics = topics[:5]
	}
	return topics
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
