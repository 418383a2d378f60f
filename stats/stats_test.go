package stats

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mseshachalam/vector/app"
)

func TestRecordWritesHeaderOnceAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats", "usage_stats.csv")

	r, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	r.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	err = r.Record(app.Usage{
		Model:        "llama3",
		InputTokens:  120,
		OutputTokens: 45,
		Duration:     2500 * time.Millisecond,
		Op:           "report_generation",
	})
	if err != nil {
		t.Fatal(err)
	}

	// A second recorder over the same file must not duplicate the header.
	r2, err := NewCSVRecorder(path)
	if err != nil {
		t.Fatal(err)
	}
	r2.now = r.now
	if err := r2.Record(app.Usage{Model: "llama3", Op: "chat_query"}); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "Timestamp" || rows[0][5] != "Type" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	want := []string{"2024-05-01 12:00:00", "llama3", "120", "45", "2.50", "report_generation"}
	for i, col := range want {
		if rows[1][i] != col {
			t.Fatalf("row 1 col %d: got %q, want %q", i, rows[1][i], col)
		}
	}
	if rows[2][5] != "chat_query" {
		t.Fatalf("row 2 type %q, want chat_query", rows[2][5])
	}
}
