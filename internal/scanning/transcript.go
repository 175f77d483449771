package scanning

import "strings"

// transcriptionPrompt is shared by the vision model scanners. The extraction
// rules run on the returned text, so the models must only transcribe.
const transcriptionPrompt = `You are performing OCR (Optical Character Recognition) on a photographed or scanned invoice.

Transcribe ALL visible text exactly as it appears, preserving:
- Line breaks and the top-to-bottom reading order
- Numbers, currency symbols, decimal separators and dates exactly as printed
- Capitalization and punctuation

Do not interpret, summarize, correct or reformat anything.
Do not add commentary such as "Here is the text:".
Do not use markdown code blocks.
If nothing is legible, return an empty response.`

// cleanTranscript strips markdown code fences that models add despite being asked not to
func cleanTranscript(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// Drop the opening fence line (which may carry a language tag)
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
