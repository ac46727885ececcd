package wordlist

// Typeable reports whether every rune of word can be entered as a single
// printable ASCII keystroke.
func Typeable(word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i < len(word); i++ {
		ch := word[i]
		if ch < ' ' || ch > '~' {
			return false
		}
	}
	return true
}
