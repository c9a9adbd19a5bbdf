package event

import "github.com/forPelevin/gomoji"

// StripEmoji removes emoji from s, including multi-rune sequences such as
// keycaps, flags and ZWJ families. Surrounding whitespace is left alone;
// callers trim afterwards.
func StripEmoji(s string) string {
	return gomoji.RemoveEmojis(s)
}
