package partner

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/leadfunnel/personaquiz/internal/platform/errors"
	"github.com/leadfunnel/personaquiz/internal/storage"
	"github.com/leadfunnel/personaquiz/internal/storage/memory"
)

var rosterColumns = []string{
	"ref", "name", "title", "img_url",
	"line_id", "line_search_id", "line_token", "password",
}

func rosterRow(ref, name string) []string {
	return []string{ref, name, "顧問", "", "line-" + ref, "@" + ref, "token-" + ref, "pw-" + ref}
}

func seededStore(master, team storage.Table) *memory.Store {
	store := memory.New()
	store.Seed(TableMaster, master)
	store.Seed(TableTeam, team)
	return store
}

func TestLoadRosterMergesTables(t *testing.T) {
	t.Parallel()

	store := seededStore(
		storage.Table{Columns: rosterColumns, Rows: [][]string{rosterRow("master", "總顧問")}},
		storage.Table{Columns: rosterColumns, Rows: [][]string{rosterRow("amy", "Amy")}},
	)

	roster, err := LoadRoster(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	if got := len(roster.Records()); got != 2 {
		t.Fatalf("len(Records()) = %d, want 2", got)
	}
	if got := roster.Resolve("amy").Name; got != "Amy" {
		t.Errorf("Resolve(%q).Name = %q, want %q", "amy", got, "Amy")
	}
}

func TestLoadRosterMasterWinsDuplicateRef(t *testing.T) {
	t.Parallel()

	store := seededStore(
		storage.Table{Columns: rosterColumns, Rows: [][]string{rosterRow("amy", "Amy Master")}},
		storage.Table{Columns: rosterColumns, Rows: [][]string{rosterRow("amy", "Amy Team")}},
	)

	roster, err := LoadRoster(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	if got := roster.Resolve("amy").Name; got != "Amy Master" {
		t.Errorf("Resolve(%q).Name = %q, want %q", "amy", got, "Amy Master")
	}
}

func TestLoadRosterNormalizesHeadersAndRefs(t *testing.T) {
	t.Parallel()

	columns := make([]string, len(rosterColumns))
	for i, col := range rosterColumns {
		columns[i] = " " + strings.ToUpper(col) + " "
	}
	store := seededStore(
		storage.Table{Columns: columns, Rows: [][]string{rosterRow("  Master ", "總顧問")}},
		storage.Table{Columns: rosterColumns},
	)

	roster, err := LoadRoster(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}
	record, ok := roster.Lookup("master")
	if !ok {
		t.Fatal("Lookup(master) did not find the trimmed ref")
	}
	if record.Name != "總顧問" {
		t.Errorf("record.Name = %q, want %q", record.Name, "總顧問")
	}
}

func TestLoadRosterMissingColumnFatal(t *testing.T) {
	t.Parallel()

	store := seededStore(
		storage.Table{Columns: []string{"ref", "name"}, Rows: [][]string{{"master", "總顧問"}}},
		storage.Table{Columns: rosterColumns},
	)

	_, err := LoadRoster(context.Background(), store)
	if !apperrors.Is(err, apperrors.CodeRosterColumnMissing) {
		t.Fatalf("LoadRoster() error = %v, want code %s", err, apperrors.CodeRosterColumnMissing)
	}
}

func TestLoadRosterEmptyFatal(t *testing.T) {
	t.Parallel()

	store := seededStore(
		storage.Table{Columns: rosterColumns},
		storage.Table{Columns: rosterColumns},
	)

	_, err := LoadRoster(context.Background(), store)
	if !apperrors.Is(err, apperrors.CodeRosterEmpty) {
		t.Fatalf("LoadRoster() error = %v, want code %s", err, apperrors.CodeRosterEmpty)
	}
}

func TestResolveFallsBackToMaster(t *testing.T) {
	t.Parallel()

	store := seededStore(
		storage.Table{Columns: rosterColumns, Rows: [][]string{rosterRow("master", "總顧問")}},
		storage.Table{Columns: rosterColumns, Rows: [][]string{rosterRow("amy", "Amy")}},
	)
	roster, err := LoadRoster(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}

	if got := roster.Resolve("nobody").Name; got != "總顧問" {
		t.Errorf("Resolve(%q).Name = %q, want %q", "nobody", got, "總顧問")
	}
	if got, want := roster.Resolve("  Master "), roster.Resolve("master"); got != want {
		t.Errorf("Resolve with padding = %+v, want %+v", got, want)
	}
}

func TestResolveFallsBackToFirstRow(t *testing.T) {
	t.Parallel()

	store := seededStore(
		storage.Table{Columns: rosterColumns, Rows: [][]string{rosterRow("amy", "Amy")}},
		storage.Table{Columns: rosterColumns, Rows: [][]string{rosterRow("bob", "Bob")}},
	)
	roster, err := LoadRoster(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadRoster() error = %v", err)
	}

	if got := roster.Resolve("nobody").Name; got != "Amy" {
		t.Errorf("Resolve(%q).Name = %q, want %q", "nobody", got, "Amy")
	}
}

func TestAddFriendURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		handle string
		want   string
	}{
		{"@990aixrh", "https://line.me/R/ti/p/@990aixrh"},
		{"my-id", "https://line.me/ti/p/~my-id"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := AddFriendURL(tt.handle); got != tt.want {
			t.Errorf("AddFriendURL(%q) = %q, want %q", tt.handle, got, tt.want)
		}
	}
}

func TestRewriteDriveURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "file path link",
			in:   "https://drive.google.com/file/d/abc123/view?usp=sharing",
			want: "https://drive.google.com/uc?export=view&id=abc123",
		},
		{
			name: "file path without suffix",
			in:   "https://drive.google.com/file/d/abc123",
			want: "https://drive.google.com/uc?export=view&id=abc123",
		},
		{
			name: "open id link",
			in:   "https://drive.google.com/open?id=abc123&authuser=0",
			want: "https://drive.google.com/uc?export=view&id=abc123",
		},
		{
			name: "foreign url untouched",
			in:   "https://example.com/avatar.png",
			want: "https://example.com/avatar.png",
		},
		{
			name: "empty",
			in:   "  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RewriteDriveURL(tt.in); got != tt.want {
				t.Errorf("RewriteDriveURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
