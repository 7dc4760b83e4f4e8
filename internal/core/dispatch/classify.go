package dispatch

import (
	"strings"
	"unicode/utf8"
)

// Classify resolves a return string into the way it is sent. Precedence:
// a chord whose first "+" segment is a modifier, then a lone special key,
// then clipboard paste for literals longer than PasteThreshold characters,
// and finally character-by-character typing.
func Classify(spec string) Resolution {
	if head, _, found := strings.Cut(spec, "+"); found {
		if _, ok := LookupModifier(head); ok {
			parts := strings.Split(spec, "+")
			keys := make([]Token, 0, len(parts))
			for _, part := range parts {
				keys = append(keys, resolveToken(part))
			}
			return Resolution{Kind: KindModifierCombo, Keys: keys, Text: spec}
		}
	}

	if name, ok := LookupSpecialKey(spec); ok {
		return Resolution{
			Kind: KindSpecialKey,
			Keys: []Token{{Kind: TokenSpecialKey, Name: name}},
			Text: spec,
		}
	}

	if utf8.RuneCountInString(spec) > PasteThreshold {
		return Resolution{Kind: KindClipboardPaste, Text: spec}
	}
	return Resolution{Kind: KindTypedLiteral, Text: spec}
}

func resolveToken(part string) Token {
	if name, ok := LookupModifier(part); ok {
		return Token{Kind: TokenModifier, Name: name}
	}
	if name, ok := LookupSpecialKey(part); ok {
		return Token{Kind: TokenSpecialKey, Name: name}
	}
	return Token{Kind: TokenLiteral, Name: strings.ToLower(part)}
}
