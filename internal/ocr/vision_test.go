package ocr

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	vision "google.golang.org/api/vision/v1"
)

// block builds a single-paragraph block from words, each symbol carrying the
// given break after its last character.
func block(confidence float64, words ...string) *vision.Block {
	var visionWords []*vision.Word
	for _, w := range words {
		var symbols []*vision.Symbol
		for i, r := range w {
			s := &vision.Symbol{Text: string(r)}
			if i == len(w)-1 {
				s.Property = &vision.TextProperty{
					DetectedBreak: &vision.DetectedBreak{Type: "SPACE"},
				}
			}
			symbols = append(symbols, s)
		}
		visionWords = append(visionWords, &vision.Word{Symbols: symbols})
	}
	return &vision.Block{
		Confidence: confidence,
		Paragraphs: []*vision.Paragraph{{Words: visionWords}},
	}
}

func annotation(blocks ...*vision.Block) *vision.TextAnnotation {
	return &vision.TextAnnotation{
		Pages: []*vision.Page{{Blocks: blocks}},
	}
}

var _ = Describe("filterFullText", func() {
	When("all blocks clear the threshold", func() {
		It("keeps them all, one line per block", func() {
			text := filterFullText(annotation(
				block(0.95, "STORE", "A"),
				block(0.90, "TOTAL", "17.98"),
			), 0.3)
			Expect(text).To(Equal("STORE A\nTOTAL 17.98"))
		})
	})

	When("a block falls below the threshold", func() {
		It("drops it silently", func() {
			text := filterFullText(annotation(
				block(0.95, "STORE", "A"),
				block(0.10, "smudged", "noise"),
				block(0.90, "TOTAL", "17.98"),
			), 0.3)
			Expect(text).To(Equal("STORE A\nTOTAL 17.98"))
			Expect(text).NotTo(ContainSubstring("smudged"))
		})
	})

	When("a block reports no confidence at all", func() {
		It("keeps it", func() {
			text := filterFullText(annotation(
				block(0, "STORE", "A"),
				block(0, "TOTAL", "17.98"),
			), 0.3)
			Expect(text).To(Equal("STORE A\nTOTAL 17.98"))
		})
	})

	When("every block is below the threshold", func() {
		It("returns an empty string", func() {
			text := filterFullText(annotation(block(0.05, "noise")), 0.3)
			Expect(text).To(Equal(""))
		})
	})

	When("the annotation has no pages", func() {
		It("returns an empty string", func() {
			Expect(filterFullText(&vision.TextAnnotation{}, 0.3)).To(Equal(""))
		})
	})
})

var _ = Describe("blockText", func() {
	It("honors line breaks inside a block", func() {
		b := block(0.9, "MILK")
		last := b.Paragraphs[0].Words[0].Symbols[3]
		last.Property.DetectedBreak.Type = "LINE_BREAK"
		b.Paragraphs[0].Words = append(b.Paragraphs[0].Words, &vision.Word{
			Symbols: []*vision.Symbol{{Text: "6"}, {Text: "."}, {Text: "5"}, {Text: "0"}},
		})
		Expect(blockText(b)).To(Equal("MILK\n6.50"))
	})
})
