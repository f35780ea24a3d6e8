// Package chunker splits raw documents into overlapping, size-bounded
// chunks suitable for embedding and retrieval.
package chunker

import (
	"regexp"
	"strings"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
)

// Options controls chunk sizing. Token counts use the same estimate as
// the retrieval budget (ceil(chars/4)).
type Options struct {
	MaxTokens     int
	MinTokens     int
	OverlapTokens int
}

// DefaultOptions are the chunk sizing defaults
func DefaultOptions() Options {
	return Options{
		MaxTokens:     500,
		MinTokens:     100,
		OverlapTokens: 50,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.MaxTokens <= 0 {
		o.MaxTokens = def.MaxTokens
	}
	if o.MinTokens <= 0 {
		o.MinTokens = def.MinTokens
	}
	if o.OverlapTokens < 0 {
		o.OverlapTokens = def.OverlapTokens
	}
	return o
}

var (
	headerRe   = regexp.MustCompile(`(?m)^#{1,6}\s`)
	sentenceRe = regexp.MustCompile(`[.!?]["')\]]?(\s+|$)`)
	crlfRe     = regexp.MustCompile(`\r\n?`)
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// Split chunks the given document text. Empty or whitespace-only input
// yields an empty result, not an error. Chunk offsets reference the
// normalized section text the chunk was cut from.
func Split(text string, opts Options) []model.Chunk {
	opts = opts.normalized()

	norm := normalizeWhitespace(text)
	if strings.TrimSpace(norm) == "" {
		return nil
	}

	var chunks []model.Chunk
	for _, sec := range splitSections(norm) {
		chunks = append(chunks, chunkSection(sec, opts)...)
	}

	for i := range chunks {
		chunks[i].Index = i
	}
	return chunks
}

func normalizeWhitespace(text string) string {
	text = crlfRe.ReplaceAllString(text, "\n")
	text = blankRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// splitSections splits the document at markdown-style headers so chunk
// boundaries respect topic boundaries. Documents without headers are a
// single section.
func splitSections(text string) []string {
	locs := headerRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	var sections []string
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			if sec := strings.TrimSpace(text[prev:loc[0]]); sec != "" {
				sections = append(sections, sec)
			}
			prev = loc[0]
		}
	}
	if sec := strings.TrimSpace(text[prev:]); sec != "" {
		sections = append(sections, sec)
	}
	return sections
}

type paragraph struct {
	text  string
	start int
	end   int
}

func splitParagraphs(section string) []paragraph {
	var paras []paragraph
	offset := 0
	for _, part := range strings.Split(section, "\n\n") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			start := offset + strings.Index(part, trimmed)
			paras = append(paras, paragraph{
				text:  trimmed,
				start: start,
				end:   start + len(trimmed),
			})
		}
		offset += len(part) + 2
	}
	return paras
}

type buffer struct {
	parts []string
	start int
	end   int
}

func (b *buffer) empty() bool {
	return len(b.parts) == 0
}

func (b *buffer) content() string {
	return strings.Join(b.parts, "\n\n")
}

func (b *buffer) tokens() int {
	return model.EstimateTokens(b.content())
}

func chunkSection(section string, opts Options) []model.Chunk {
	var chunks []model.Chunk

	buf := &buffer{start: -1}
	flush := func() {
		if buf.empty() {
			return
		}
		content := buf.content()
		chunks = append(chunks, model.Chunk{
			Content:       content,
			StartChar:     buf.start,
			EndChar:       buf.end,
			TokenEstimate: model.EstimateTokens(content),
		})
		buf = &buffer{start: -1}
	}

	// seed starts a fresh buffer with an overlap tail from the previous
	// chunk, shrunk so the tail plus the next paragraph stays in budget.
	seed := func(nextTokens int) {
		if len(chunks) == 0 || opts.OverlapTokens == 0 {
			return
		}
		budget := opts.OverlapTokens
		if room := opts.MaxTokens - nextTokens; room < budget {
			budget = room
		}
		if budget <= 0 {
			return
		}
		tail := overlapTail(chunks[len(chunks)-1].Content, budget*4)
		if tail != "" {
			buf.parts = append(buf.parts, tail)
		}
	}

	addPara := func(p paragraph) {
		if buf.start < 0 {
			buf.start = p.start
		}
		buf.parts = append(buf.parts, p.text)
		buf.end = p.end
	}

	for _, p := range splitParagraphs(section) {
		paraTokens := model.EstimateTokens(p.text)

		// A single paragraph beyond the budget is split at sentence
		// boundaries with the same overlap rule.
		if paraTokens > opts.MaxTokens {
			flush()
			chunks = append(chunks, splitOversized(p, opts)...)
			continue
		}

		if !buf.empty() && buf.tokens()+paraTokens+2 > opts.MaxTokens {
			flush()
		}
		if buf.empty() {
			seed(paraTokens)
		}
		addPara(p)
	}
	flush()

	// A trailing runt chunk is merged into its predecessor rather than
	// emitted standalone, unless it is the only chunk.
	if n := len(chunks); n >= 2 && chunks[n-1].TokenEstimate < opts.MinTokens {
		last := chunks[n-1]
		prev := &chunks[n-2]
		prev.Content = prev.Content + "\n\n" + last.Content
		prev.EndChar = last.EndChar
		prev.TokenEstimate = model.EstimateTokens(prev.Content)
		chunks = chunks[:n-1]
	}

	return chunks
}

// splitOversized cuts an oversized paragraph into sentence-bounded
// pieces. A single sentence that alone exceeds the budget is emitted as
// its own oversized chunk.
func splitOversized(p paragraph, opts Options) []model.Chunk {
	sentences := splitSentences(p.text)

	var chunks []model.Chunk
	var parts []string
	start := p.start
	cursor := p.start

	flush := func(end int) {
		if len(parts) == 0 {
			return
		}
		content := strings.Join(parts, " ")
		chunks = append(chunks, model.Chunk{
			Content:       content,
			StartChar:     start,
			EndChar:       end,
			TokenEstimate: model.EstimateTokens(content),
		})
		parts = nil
	}

	for _, s := range sentences {
		sTokens := model.EstimateTokens(s)
		joined := model.EstimateTokens(strings.Join(append(parts, s), " "))

		if len(parts) > 0 && joined > opts.MaxTokens {
			flush(cursor)
			if opts.OverlapTokens > 0 {
				if room := opts.MaxTokens - sTokens; room > 0 {
					budget := opts.OverlapTokens
					if room < budget {
						budget = room
					}
					if tail := overlapTail(chunks[len(chunks)-1].Content, budget*4); tail != "" {
						parts = append(parts, tail)
					}
				}
			}
			start = cursor
		}
		parts = append(parts, s)
		cursor += len(s) + 1
	}
	flush(p.end)

	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	prev := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[prev:loc[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// overlapTail returns up to maxChars from the end of content, preferring
// to begin at a sentence boundary within the window over a hard cut.
func overlapTail(content string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	if len(content) <= maxChars {
		return content
	}

	window := content[len(content)-maxChars:]
	if loc := sentenceRe.FindStringIndex(window); loc != nil && loc[1] < len(window) {
		return strings.TrimSpace(window[loc[1]:])
	}

	// Hard character cut, avoiding a mid-word start when possible
	if idx := strings.IndexAny(window, " \n"); idx >= 0 && idx < len(window)-1 {
		return strings.TrimSpace(window[idx+1:])
	}
	return window
}
