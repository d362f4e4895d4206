package domain

import (
	"encoding/json"
	"testing"
)

func TestQAPairEntryConfidence(t *testing.T) {
	cases := []struct {
		name       string
		confidence *float64
		want       float64
	}{
		{name: "absent", confidence: nil, want: 0.8},
		{name: "explicit zero", confidence: Confidence(0), want: 0},
		{name: "in range", confidence: Confidence(0.35), want: 0.35},
		{name: "out of range", confidence: Confidence(3), want: 0.8},
	}
	for _, tc := range cases {
		entry, ok := QAPair{Question: "Q", Answer: "A", Confidence: tc.confidence}.Entry()
		if !ok {
			t.Fatalf("%s: Entry() rejected a complete pair", tc.name)
		}
		if entry.Confidence != tc.want {
			t.Fatalf("%s: expected confidence %v, got %v", tc.name, tc.want, entry.Confidence)
		}
	}
}

func TestDecodeTrainingPayloadKeepsExplicitZeroConfidence(t *testing.T) {
	payload, skipped, err := DecodeTrainingPayload([]byte(`{"qaPairs":[{"question":"old rule","answer":"Retired.","confidence":0}]}`))
	if err != nil {
		t.Fatalf("DecodeTrainingPayload() error = %v", err)
	}
	if skipped != 0 || len(payload.QAPairs) != 1 {
		t.Fatalf("expected one pair, got %d (skipped %d)", len(payload.QAPairs), skipped)
	}
	entry, _ := payload.QAPairs[0].Entry()
	if entry.Confidence != 0 {
		t.Fatalf("expected confidence 0 to survive decoding, got %v", entry.Confidence)
	}
}

func TestDecodeQAPairsIsolatesBadRecords(t *testing.T) {
	var records []json.RawMessage
	if err := json.Unmarshal([]byte(`[
		{"question":42,"answer":"bad"},
		"not an object",
		{"question":"Is parking free?","answer":"Yes.","confidence":"high"},
		{"question":"Is parking free?","answer":"Yes."}
	]`), &records); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	pairs := DecodeQAPairs(records)
	if len(pairs) != 4 {
		t.Fatalf("expected one pair per record, got %d", len(pairs))
	}
	for i := 0; i < 3; i++ {
		if _, ok := pairs[i].Entry(); ok {
			t.Fatalf("expected record %d to be rejected, got %+v", i, pairs[i])
		}
	}
	if _, ok := pairs[3].Entry(); !ok {
		t.Fatalf("expected last record accepted, got %+v", pairs[3])
	}
}
