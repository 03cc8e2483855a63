package markdown

import "strings"

// DefaultSpeechLimit caps the text sent to text-to-speech.
const DefaultSpeechLimit = 4000

var speechMarkers = strings.NewReplacer("*", "", "#", "", "`", "")

// StripForSpeech removes the Markdown marker characters that would otherwise be
// read aloud and truncates the result to limit runes. A limit <= 0 disables
// truncation.
func StripForSpeech(s string, limit int) string {
	s = speechMarkers.Replace(s)
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// SpeechText renders content to plain text and prepares it for speech.
// Unterminated markers left in the plain text are removed as well.
func SpeechText(content string, limit int) string {
	return StripForSpeech(Plain(Render(content)), limit)
}
