// internal/session/words.go
package session

import "math/rand"

// fallbackWords is the offline prompt list used whenever the generator is
// unreachable or returns garbage. A round never starts without a word.
var fallbackWords = []string{
	"kedi", "ev", "güneş", "ağaç", "araba",
	"kitap", "masa", "sandalye", "top", "balık",
}

// fallbackWord picks uniformly from the offline list.
func fallbackWord() string {
	return fallbackWords[rand.Intn(len(fallbackWords))]
}

// IsFallbackWord reports whether w comes from the offline list.
func IsFallbackWord(w string) bool {
	for _, fw := range fallbackWords {
		if fw == w {
			return true
		}
	}
	return false
}
