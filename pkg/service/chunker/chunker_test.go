package chunker_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
	"github.com/NofaBC/TechSupport-AI/pkg/service/chunker"
	"github.com/m-mizutani/gt"
)

func TestSplit_EmptyInput(t *testing.T) {
	gt.Array(t, chunker.Split("", chunker.DefaultOptions())).Length(0)
	gt.Array(t, chunker.Split("   \n\n\t  ", chunker.DefaultOptions())).Length(0)
}

func TestSplit_SingleSmallDocument(t *testing.T) {
	text := "The printer shows error E02 when the paper tray is empty. Refill the tray and retry."

	chunks := chunker.Split(text, chunker.DefaultOptions())
	gt.Array(t, chunks).Length(1)
	gt.Equal(t, chunks[0].Content, text)
	gt.Equal(t, chunks[0].Index, 0)
	gt.Equal(t, chunks[0].TokenEstimate, model.EstimateTokens(text))
}

func TestSplit_ContentIsLossless(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Paragraph %03d explains troubleshooting detail number %03d for the router setup. It covers cable checks and LED status codes in depth.\n\n", i, i)
	}
	text := sb.String()

	chunks := chunker.Split(text, chunker.Options{MaxTokens: 200, MinTokens: 50, OverlapTokens: 20})
	gt.Number(t, len(chunks)).Greater(1)

	// Every source paragraph must survive into some chunk
	joined := strings.Join(collectContents(chunks), "\n\n")
	for i := 0; i < 40; i++ {
		marker := fmt.Sprintf("Paragraph %03d explains", i)
		gt.Bool(t, strings.Contains(joined, marker)).True()
	}
}

func TestSplit_RespectsMaxTokens(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "Step %d: restart the device and observe the indicator light for thirty seconds before continuing.\n\n", i)
	}

	opts := chunker.Options{MaxTokens: 150, MinTokens: 30, OverlapTokens: 15}
	chunks := chunker.Split(sb.String(), opts)

	for _, c := range chunks {
		gt.Number(t, c.TokenEstimate).LessOrEqual(opts.MaxTokens)
	}
}

func TestSplit_OverlapBetweenChunks(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Sentence group %d describes the diagnostic procedure in full detail for support staff. ", i)
		sb.WriteString("\n\n")
	}

	chunks := chunker.Split(sb.String(), chunker.Options{MaxTokens: 100, MinTokens: 20, OverlapTokens: 20})
	gt.Number(t, len(chunks)).Greater(1)

	// The second chunk must begin with a tail of the first
	head := chunks[1].Content[:min(40, len(chunks[1].Content))]
	gt.Bool(t, strings.Contains(chunks[0].Content, strings.TrimSpace(strings.Split(head, "\n")[0]))).True()
}

func TestSplit_HeaderSectionsPreserveBoundaries(t *testing.T) {
	text := "# Installation\n\nInstall the agent using the setup wizard.\n\n# Troubleshooting\n\nIf the agent fails to start, check the service logs."

	chunks := chunker.Split(text, chunker.Options{MaxTokens: 500, MinTokens: 5, OverlapTokens: 10})
	gt.Array(t, chunks).Length(2)
	gt.Bool(t, strings.HasPrefix(chunks[0].Content, "# Installation")).True()
	gt.Bool(t, strings.HasPrefix(chunks[1].Content, "# Troubleshooting")).True()
}

func TestSplit_OversizedParagraphSplitsAtSentences(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&sb, "Clause %d of the oversized paragraph keeps going with more words than the budget allows. ", i)
	}

	opts := chunker.Options{MaxTokens: 100, MinTokens: 10, OverlapTokens: 10}
	chunks := chunker.Split(sb.String(), opts)
	gt.Number(t, len(chunks)).Greater(1)
	for _, c := range chunks {
		gt.Number(t, c.TokenEstimate).LessOrEqual(opts.MaxTokens)
	}
}

func TestSplit_SingleOversizedSentenceKept(t *testing.T) {
	sentence := strings.Repeat("word ", 300) + "end"
	chunks := chunker.Split(sentence, chunker.Options{MaxTokens: 100, MinTokens: 10, OverlapTokens: 10})
	gt.Array(t, chunks).Length(1)
	gt.Number(t, chunks[0].TokenEstimate).Greater(100)
}

func TestSplit_RuntFinalChunkMerged(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&sb, "A reasonably sized paragraph number %d with enough words to fill out most of the budget for one chunk of text content here.\n\n", i)
	}
	sb.WriteString("Tiny tail.")

	opts := chunker.Options{MaxTokens: 120, MinTokens: 40, OverlapTokens: 10}
	chunks := chunker.Split(sb.String(), opts)

	last := chunks[len(chunks)-1]
	gt.Bool(t, strings.Contains(last.Content, "Tiny tail.")).True()
	gt.Number(t, last.TokenEstimate).GreaterOrEqual(opts.MinTokens)
}

func TestSplit_OffsetsTrackSectionText(t *testing.T) {
	text := "First paragraph of the section.\n\nSecond paragraph of the section."
	chunks := chunker.Split(text, chunker.DefaultOptions())
	gt.Array(t, chunks).Length(1)
	gt.Equal(t, chunks[0].StartChar, 0)
	gt.Equal(t, chunks[0].EndChar, len(text))
}

func collectContents(chunks []model.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}
