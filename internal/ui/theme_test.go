package ui

import "testing"

func TestGetTheme_KnownName(t *testing.T) {
	th := GetTheme("Slate")
	if th.Name != "Slate" {
		t.Fatalf("Name = %q, want %q", th.Name, "Slate")
	}
}

func TestGetTheme_UnknownFallsBackToEmber(t *testing.T) {
	th := GetTheme("NoSuchTheme")
	if th.Name != "Ember" {
		t.Fatalf("Name = %q, want %q", th.Name, "Ember")
	}
}

func TestNextTheme_Cycles(t *testing.T) {
	seen := map[string]bool{}
	name := themeOrder[0]
	for range themeOrder {
		seen[name] = true
		name = NextTheme(name)
	}
	if name != themeOrder[0] {
		t.Fatalf("cycle did not return to start: got %q", name)
	}
	for _, want := range themeOrder {
		if !seen[want] {
			t.Fatalf("theme %q never visited", want)
		}
	}
}

func TestNextTheme_UnknownStartsAtFirst(t *testing.T) {
	if got := NextTheme("NoSuchTheme"); got != themeOrder[0] {
		t.Fatalf("NextTheme = %q, want %q", got, themeOrder[0])
	}
}

func TestThemes_CoverStateLabels(t *testing.T) {
	labels := []string{"started", "stopped", "connected", "disconnected", "reconnecting"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, label := range labels {
			if th.StatusColors[label] == "" {
				t.Fatalf("theme %q missing status color %q", name, label)
			}
		}
	}
}
