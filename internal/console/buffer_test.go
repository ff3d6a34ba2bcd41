package console

import (
	"reflect"
	"testing"
)

func TestAppendReassemblesLinesAcrossChunks(t *testing.T) {
	b := NewBuffer(10)
	b.Append([]byte("[12:00:01] Server sta"))
	b.Append([]byte("rting\n[12:00:02] Done"))

	got := b.Lines()
	want := []string{"[12:00:01] Server starting", "[12:00:02] Done"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines = %#v, want %#v", got, want)
	}
	if b.Len() != 1 {
		t.Fatalf("completed lines = %d, want 1 (second line still pending)", b.Len())
	}

	b.Append([]byte("\n"))
	if b.Len() != 2 {
		t.Fatalf("completed lines = %d after newline, want 2", b.Len())
	}
}

func TestAppendKeepsRuneSplitAcrossChunks(t *testing.T) {
	b := NewBuffer(10)
	// "Überwelt" with the two-byte Ü split between chunks.
	line := []byte("\xc3\x9cberwelt\n")
	b.Append(line[:1])
	b.Append(line[1:])

	got := b.Lines()
	want := []string{"Überwelt"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines = %#v, want %#v", got, want)
	}
}

func TestAppendStripsCarriageReturns(t *testing.T) {
	b := NewBuffer(10)
	b.Append([]byte("hello\r\nworld\r\n"))
	got := b.Lines()
	want := []string{"hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines = %#v, want %#v", got, want)
	}
}

func TestBufferBounded(t *testing.T) {
	b := NewBuffer(3)
	for _, line := range []string{"one", "two", "three", "four", "five"} {
		b.AppendLine(line)
	}
	got := b.Lines()
	want := []string{"three", "four", "five"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Lines = %#v, want newest %d", got, 3)
	}
}

func TestClear(t *testing.T) {
	b := NewBuffer(10)
	b.Append([]byte("full line\npartial"))
	b.Clear()
	if got := b.Lines(); len(got) != 0 {
		t.Fatalf("Lines after Clear = %#v, want empty", got)
	}
	// A fresh chunk starts clean, no leftover fragment.
	b.Append([]byte("next\n"))
	if got := b.Lines(); len(got) != 1 || got[0] != "next" {
		t.Fatalf("Lines = %#v", got)
	}
}
