package moderation

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
)

const moderationPrompt = `You moderate an anonymous public message wall where people leave short notes to someone.
Keep the wall friendly and safe for every audience, without being strict about tone.

Allowed: casual slang ("lol", "bruh", "omg"), mild frustration ("darn", "heck", "ugh"),
friendly teasing, sarcasm that is not mean, any honest emotion.

Flag: explicit profanity or curse words, hate speech or discrimination, threats or violence,
sexually explicit content, harassment or personal attacks.

When the text is flagged, rewrite it: replace each offending word with a friendly word that
starts with the same letter ("damn" -> "darn", "shit" -> "sugar"), keep everything else,
including sentence structure and tone, exactly as written.

Answer with a single JSON object and nothing else:
{"isProfane": true|false, "cleanVersion": "<rewritten text, or the text unchanged>", "reason": "<short reason, or 'no issues found'>"}
`

// BuildPrompt embeds the user text in the moderation instructions.
// A language hint is added when the detection is reliable.
func BuildPrompt(text string) string {
	var b strings.Builder
	b.WriteString(moderationPrompt)

	info := whatlanggo.Detect(text)
	if info.IsReliable() {
		fmt.Fprintf(&b, "\nThe text appears to be written in %s; keep any rewrite in that language.\n", info.Lang.String())
	}

	fmt.Fprintf(&b, "\nText: %q\n", text)
	return b.String()
}
