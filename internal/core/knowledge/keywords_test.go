package knowledge

import (
	"reflect"
	"testing"
)

func TestExtractDropsShortAndStopWords(t *testing.T) {
	got := Extract("The quick brown fox can't jump!")
	want := []string{"quick", "brown", "fox", "jump"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %v, want %v", got, want)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "a is ?", "___ !!"} {
		if got := Extract(in); len(got) != 0 {
			t.Fatalf("Extract(%q) = %v, want empty", in, got)
		}
	}
}

func TestExtractDeduplicatesInFirstOccurrenceOrder(t *testing.T) {
	got := Extract("Vasectomy recovery vasectomy VASECTOMY pre_op")
	want := []string{"vasectomy", "recovery", "pre_op"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Extract() = %v, want %v", got, want)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	a := Extract("How long does recovery take after the procedure?")
	b := Extract("How long does recovery take after the procedure?")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("Extract() not deterministic: %v vs %v", a, b)
	}
}
