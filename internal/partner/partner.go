// Package partner resolves which operator a quiz session belongs to.
package partner

import (
	"context"
	"strings"

	apperrors "github.com/leadfunnel/personaquiz/internal/platform/errors"
	"github.com/leadfunnel/personaquiz/internal/storage"
)

// Table names holding the operator roster in the backing store.
const (
	TableMaster = "partners_master"
	TableTeam   = "partners_team"
)

// FallbackRef is the roster key used when a session's ref has no match.
const FallbackRef = "master"

// requiredColumns is the roster column set; loading fails fatally when any
// is missing from the merged tables.
var requiredColumns = []string{
	"ref", "name", "title", "img_url",
	"line_id", "line_search_id", "line_token", "password",
}

// Record is one operator row from the roster, immutable once loaded.
type Record struct {
	Ref          string // normalized referral key
	Name         string
	Title        string
	ImageURL     string // already rewritten for direct loading
	LineID       string // messaging contact id for pushes
	LineSearchID string // messaging search handle for the add-friend link
	LineToken    string // messaging push token
	Password     string // report gate password
}

// Roster is the merged operator table keyed by normalized ref.
type Roster struct {
	records []Record
	byRef   map[string]int
}

// NormalizeRef canonicalizes a referral key for lookup.
func NormalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}

// LoadRoster reads and merges the master and team partner tables. It runs
// once at session-serving startup; a missing required column is fatal.
func LoadRoster(ctx context.Context, store storage.TableStore) (*Roster, error) {
	master, err := store.ReadTable(ctx, TableMaster)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreUnavailable, "read partners_master", err)
	}
	team, err := store.ReadTable(ctx, TableTeam)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStoreUnavailable, "read partners_team", err)
	}

	roster := &Roster{byRef: make(map[string]int)}
	for _, table := range []storage.Table{master, team} {
		records, err := recordsFromTable(table)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if _, exists := roster.byRef[record.Ref]; !exists {
				roster.byRef[record.Ref] = len(roster.records)
				roster.records = append(roster.records, record)
			}
		}
	}
	if len(roster.records) == 0 {
		return nil, apperrors.New(apperrors.CodeRosterEmpty, "partner roster has no rows")
	}
	return roster, nil
}

func recordsFromTable(table storage.Table) ([]Record, error) {
	index := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.WithMetadata(apperrors.CodeRosterColumnMissing,
			"partner table is missing required columns",
			map[string]string{"Columns": strings.Join(missing, ", ")})
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, Record{
			Ref:          NormalizeRef(cell(row, "ref")),
			Name:         cell(row, "name"),
			Title:        cell(row, "title"),
			ImageURL:     RewriteDriveURL(cell(row, "img_url")),
			LineID:       cell(row, "line_id"),
			LineSearchID: cell(row, "line_search_id"),
			LineToken:    cell(row, "line_token"),
			Password:     cell(row, "password"),
		})
	}
	return records, nil
}

// Resolve picks the operator record for a referral key: exact match on the
// normalized key, else the "master" record, else the first roster row.
func (r *Roster) Resolve(ref string) Record {
	ref = NormalizeRef(ref)
	if i, ok := r.byRef[ref]; ok {
		return r.records[i]
	}
	if i, ok := r.byRef[FallbackRef]; ok {
		return r.records[i]
	}
	return r.records[0]
}

// Lookup returns the record for an exact normalized ref, if present.
func (r *Roster) Lookup(ref string) (Record, bool) {
	if i, ok := r.byRef[NormalizeRef(ref)]; ok {
		return r.records[i], true
	}
	return Record{}, false
}

// Records returns the roster rows in load order.
func (r *Roster) Records() []Record {
	return r.records
}

// AddFriendURL builds the add-friend link for a messaging handle. Handles
// starting with "@" are official-account search ids; anything else is a
// personal id reachable through the tilde form.
func AddFriendURL(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return ""
	}
	if strings.HasPrefix(handle, "@") {
		return "https://line.me/R/ti/p/" + handle
	}
	return "https://line.me/ti/p/~" + handle
}

// RewriteDriveURL converts Google Drive share links into direct-view URLs
// so partner avatars render in an <img> tag. Other URLs pass through.
func RewriteDriveURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}
	if _, rest, ok := strings.Cut(url, "/file/d/"); ok {
		id, _, _ := strings.Cut(rest, "/")
		if id, _, _ = strings.Cut(id, "?"); id != "" {
			return "https://drive.google.com/uc?export=view&id=" + id
		}
		return url
	}
	if _, rest, ok := strings.Cut(url, "open?id="); ok {
		id, _, _ := strings.Cut(rest, "&")
		if id != "" {
			return "https://drive.google.com/uc?export=view&id=" + id
		}
	}
	return url
}
