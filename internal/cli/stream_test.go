//go:build !integration
// +build !integration

package cli

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"
)

func decodeStream(t *testing.T, out string) []streamRecord {
	t.Helper()
	var records []streamRecord
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var rec streamRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line %q is not a stream record: %v", sc.Text(), err)
		}
		records = append(records, rec)
	}
	return records
}

func TestStreamCommand_EmitsRequestedCount(t *testing.T) {
	out, err := runCLI(t, "stream", "--sampler", "seeded", "-n", "25", "-r", "0", "-w", "2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	records := decodeStream(t, out)
	if len(records) != 25 {
		t.Fatalf("emitted %d records, want 25", len(records))
	}
	seen := map[uint64]bool{}
	for _, rec := range records {
		if rec.Entry >= 25 {
			t.Errorf("entry %d out of range", rec.Entry)
		}
		if seen[rec.Entry] {
			t.Errorf("entry %d emitted twice", rec.Entry)
		}
		seen[rec.Entry] = true
	}
}

func TestStreamCommand_SeededRepeats(t *testing.T) {
	args := []string{"stream", "--sampler", "seeded", "--seed", "7", "-n", "10", "-r", "0", "-w", "1"}
	first, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first != second {
		t.Errorf("seeded stream should repeat exactly:\n%s\nvs\n%s", first, second)
	}
}

func TestStreamCommand_DurationStops(t *testing.T) {
	out, err := runCLI(t, "stream", "--sampler", "local", "-d", "300ms", "-r", "50", "-w", "1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(decodeStream(t, out)) == 0 {
		t.Error("expected at least one sample before the deadline")
	}
}

func TestStreamCommand_RefusesSharedAcrossWorkers(t *testing.T) {
	_, err := runCLI(t, "stream", "--sampler", "shared", "-w", "2", "-n", "1")
	if err == nil || !strings.Contains(err.Error(), "cannot stream") {
		t.Fatalf("expected a refusal, got %v", err)
	}
}
