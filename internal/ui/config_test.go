package ui

import (
	"testing"

	"github.com/stokerd/console/internal/protocol"
)

func TestArgumentsText_Parsed(t *testing.T) {
	a := protocol.ParsedArguments("-Xmx4G -Xms1G")
	if got := argumentsText(a); got != "-Xmx4G -Xms1G" {
		t.Fatalf("argumentsText = %q", got)
	}
}

func TestArgumentsText_ManualJoins(t *testing.T) {
	a := protocol.ManualArguments("-Xmx4G", "-Xms1G")
	if got := argumentsText(a); got != "-Xmx4G -Xms1G" {
		t.Fatalf("argumentsText = %q", got)
	}
}

func TestArgumentsFromText_FollowsKind(t *testing.T) {
	parsed := argumentsFromText(protocol.ArgumentsParsed, "-Xmx4G -Xms1G")
	if parsed.Kind != protocol.ArgumentsParsed || parsed.Parsed != "-Xmx4G -Xms1G" {
		t.Fatalf("parsed = %+v", parsed)
	}

	manual := argumentsFromText(protocol.ArgumentsManual, "-Xmx4G -Xms1G")
	if manual.Kind != protocol.ArgumentsManual {
		t.Fatalf("Kind = %q", manual.Kind)
	}
	if len(manual.Manual) != 2 || manual.Manual[0] != "-Xmx4G" || manual.Manual[1] != "-Xms1G" {
		t.Fatalf("Manual = %v", manual.Manual)
	}
}

func TestArgumentsRoundTrip_SurvivesKindFlip(t *testing.T) {
	// Flipping parsed -> manual -> parsed over the same simple text keeps
	// the user's input recognizable.
	text := "-Xmx4G -Xms1G"
	manual := argumentsFromText(protocol.ArgumentsManual, text)
	back := argumentsFromText(protocol.ArgumentsParsed, argumentsText(manual))
	if back.Parsed != text {
		t.Fatalf("round trip = %q, want %q", back.Parsed, text)
	}
}

func TestConfigRowIsInput(t *testing.T) {
	inputs := map[int]bool{
		cfgRowJavaKind: false,
		cfgRowJavaPath: true,
		cfgRowJarPath:  true,
		cfgRowArgsKind: false,
		cfgRowArgs:     true,
		cfgRowUserKind: false,
		cfgRowUser:     true,
	}
	for row, want := range inputs {
		if got := configRowIsInput(row); got != want {
			t.Fatalf("configRowIsInput(%d) = %v, want %v", row, got, want)
		}
	}
}
