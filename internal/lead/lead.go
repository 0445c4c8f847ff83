// Package lead records completed quiz sessions into the leads table and
// alerts operators.
package lead

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/leadfunnel/personaquiz/internal/notify"
	"github.com/leadfunnel/personaquiz/internal/partner"
	apperrors "github.com/leadfunnel/personaquiz/internal/platform/errors"
	"github.com/leadfunnel/personaquiz/internal/quiz"
	"github.com/leadfunnel/personaquiz/internal/storage"
)

var tracer = otel.Tracer("github.com/leadfunnel/personaquiz/internal/lead")

// TableLeads is the table holding recorded leads.
const TableLeads = "leads"

// Columns is the canonical lead column set, used when the leads table is
// absent or unreadable.
var Columns = []string{
	"time", "ref", "partner_name", "client_name", "client_job",
	"interest", "persona", "result_primary", "result_secondary",
	"scores", "keyword", "mode", "funnel",
}

// taipei is the funnel's reporting zone; lead timestamps are local to it.
var taipei = time.FixedZone("UTC+8", 8*60*60)

const timeLayout = "2006-01-02 15:04"

// MasterContact is the channel credential pair for the funnel owner's
// alert push.
type MasterContact struct {
	Token string
	To    string
}

// Recorder appends leads and sends best-effort operator alerts.
type Recorder struct {
	store  storage.TableStore
	sink   notify.Sink
	master MasterContact
	logger *log.Logger
	now    func() time.Time
}

// NewRecorder creates a recorder. logger may be nil to use the default
// logger.
func NewRecorder(store storage.TableStore, sink notify.Sink, master MasterContact, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{
		store:  store,
		sink:   sink,
		master: master,
		logger: logger,
		now:    time.Now,
	}
}

// RecordOnce writes the session's lead row exactly once. It is a no-op when
// the session is already recorded or has no interest answer yet; the caller
// can therefore invoke it on every result render. On success the session is
// marked recorded and two alert pushes go out, to the funnel owner and the
// session's operator; push failures are logged and swallowed. On a store
// write failure the session stays unrecorded and the error carries
// LEAD_STORE_UNAVAILABLE so the next render retries.
func (r *Recorder) RecordOnce(ctx context.Context, sess *quiz.Session, operator partner.Record, result quiz.Result) error {
	if sess.Recorded {
		return nil
	}
	if sess.Interest == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "lead.record", trace.WithAttributes(
		attribute.String("partner.ref", operator.Ref),
		attribute.String("funnel", sess.Funnel),
	))
	defer span.End()

	personaLabel := quiz.ResultLabel(result)
	keyword := quiz.PersonaFor(result.Primary).CTA

	scores, err := json.Marshal(countsFor(result))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeLeadStoreUnavailable, "encode score tally", err)
	}

	table, err := r.store.ReadTable(ctx, TableLeads)
	if err != nil || len(table.Columns) == 0 {
		if err != nil && !storage.IsNotFound(err) {
			r.logger.Printf("leads table unreadable, starting fresh: %v", err)
		}
		table = storage.Table{Columns: append([]string(nil), Columns...)}
	}

	appendRow(&table, map[string]string{
		"time":             r.now().In(taipei).Format(timeLayout),
		"ref":              operator.Ref,
		"partner_name":     operator.Name,
		"client_name":      sess.Name,
		"client_job":       sess.Segment,
		"interest":         sess.Interest,
		"persona":          personaLabel,
		"result_primary":   string(result.Primary),
		"result_secondary": string(result.Secondary),
		"scores":           string(scores),
		"keyword":          keyword,
		"mode":             sess.Mode,
		"funnel":           sess.Funnel,
	})

	if err := r.store.WriteTable(ctx, TableLeads, table); err != nil {
		span.RecordError(err)
		return apperrors.Wrap(apperrors.CodeLeadStoreUnavailable, "write leads table", err)
	}
	sess.Recorded = true

	message := alertMessage(sess, operator, result, personaLabel, keyword)
	if err := r.sink.Push(ctx, r.master.Token, r.master.To, message); err != nil {
		r.logger.Printf("master alert push failed: %v", err)
	}
	if err := r.sink.Push(ctx, operator.LineToken, operator.LineID, message); err != nil {
		r.logger.Printf("partner alert push failed (ref=%s): %v", operator.Ref, err)
	}
	return nil
}

// countsFor fills the tally out to every tag so the serialized object has a
// stable shape regardless of which options were picked.
func countsFor(result quiz.Result) map[quiz.Tag]int {
	counts := make(map[quiz.Tag]int, len(quiz.CanonicalTags))
	for _, tag := range quiz.CanonicalTags {
		counts[tag] = result.Counts[tag]
	}
	return counts
}

// appendRow adds a row keyed by column name, extending the column set with
// any names the table does not carry yet. Existing rows are padded so every
// row stays as wide as the header.
func appendRow(table *storage.Table, values map[string]string) {
	index := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			index[col] = len(table.Columns)
			table.Columns = append(table.Columns, col)
		}
	}

	for i, row := range table.Rows {
		for len(row) < len(table.Columns) {
			row = append(row, "")
		}
		table.Rows[i] = row
	}

	row := make([]string, len(table.Columns))
	for col, value := range values {
		row[index[col]] = value
	}
	table.Rows = append(table.Rows, row)
}

func alertMessage(sess *quiz.Session, operator partner.Record, result quiz.Result, personaLabel, keyword string) string {
	label := string(result.Primary)
	if result.Secondary != "" {
		label += "/" + string(result.Secondary)
	}
	return fmt.Sprintf(
		"🚀 新名單報到（%s/%s）\n"+
			"👤 %s\n"+
			"🧩 類型：%s  %s\n"+
			"🧷 關鍵字：%s\n"+
			"💼 狀態：%s\n"+
			"💬 意願：%s\n"+
			"🔗 ref：%s",
		sess.Funnel, sess.Mode, sess.Name, label, personaLabel, keyword,
		sess.Segment, sess.Interest, operator.Ref,
	)
}
