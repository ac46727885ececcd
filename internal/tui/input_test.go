package tui

import "testing"

func TestWordInputCompletes(t *testing.T) {
	in := newWordInput("cat", false)
	for i, r := range "ca" {
		if got := in.press(r); got != pressProgress {
			t.Fatalf("press %d: expected progress, got %v", i, got)
		}
	}
	if got := in.press('t'); got != pressComplete {
		t.Fatalf("expected complete, got %v", got)
	}
	if got := in.press('x'); got != pressIgnored {
		t.Fatalf("expected ignored after completion, got %v", got)
	}
	log := in.log()
	if log.CorrectCount != 1 || log.WrongCount != 0 || log.Word != "cat" {
		t.Fatalf("unexpected log: %+v", log)
	}
}

func TestWordInputMistakeRestartsWord(t *testing.T) {
	in := newWordInput("cat", false)
	in.press('c')
	if got := in.press('o'); got != pressMistake {
		t.Fatalf("expected mistake, got %v", got)
	}
	if len(in.typed) != 0 || !in.flash {
		t.Fatalf("expected reset with flash, got typed=%q flash=%v", string(in.typed), in.flash)
	}
	in.press('x')
	for _, r := range "cat" {
		in.press(r)
	}
	log := in.log()
	if log.WrongCount != 2 {
		t.Fatalf("expected 2 wrong attempts, got %d", log.WrongCount)
	}
	if got := log.LetterMistakes[1]; len(got) != 1 || got[0] != "o" {
		t.Fatalf("unexpected mistakes at 1: %v", got)
	}
	if got := log.LetterMistakes[0]; len(got) != 1 || got[0] != "x" {
		t.Fatalf("unexpected mistakes at 0: %v", got)
	}
}

func TestWordInputIgnoreCase(t *testing.T) {
	in := newWordInput("Paris", true)
	for _, r := range "paris" {
		if in.press(r) == pressMistake {
			t.Fatalf("unexpected mistake on %q", r)
		}
	}
	strict := newWordInput("Paris", false)
	if strict.press('p') != pressMistake {
		t.Fatalf("expected case mismatch to count")
	}
}

func TestWordInputOffersSkip(t *testing.T) {
	in := newWordInput("a", false)
	for i := 0; i < skipAfter-1; i++ {
		in.press('z')
	}
	if in.offerSkip() {
		t.Fatalf("skip offered too early")
	}
	in.press('z')
	if !in.offerSkip() {
		t.Fatalf("expected skip offer after %d attempts", skipAfter)
	}
}

func TestWordInputLogIsDetached(t *testing.T) {
	in := newWordInput("ab", false)
	in.press('x')
	log := in.log()
	in.press('y')
	if len(log.LetterMistakes[0]) != 1 {
		t.Fatalf("log shares storage with input: %v", log.LetterMistakes)
	}
}
