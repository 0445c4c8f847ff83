package web

import (
	"crypto/subtle"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leadfunnel/personaquiz/internal/lead"
	"github.com/leadfunnel/personaquiz/internal/partner"
	apperrors "github.com/leadfunnel/personaquiz/internal/platform/errors"
	"github.com/leadfunnel/personaquiz/internal/services/web/platform/flash"
	"github.com/leadfunnel/personaquiz/internal/services/web/platform/requestmeta"
	"github.com/leadfunnel/personaquiz/internal/services/web/routepath"
	"github.com/leadfunnel/personaquiz/internal/services/web/templates"
	"github.com/leadfunnel/personaquiz/internal/storage"
)

// grantCookieName carries the signed report grant.
const grantCookieName = "pq_admin"

// grantSubjectMaster is the grant subject with access to every lead row.
const grantSubjectMaster = "master"

// grantTTL bounds how long a report grant stays valid.
const grantTTL = 30 * time.Minute

// issueGrant signs a report grant for a subject ("master" or an operator
// ref).
func issueGrant(secret []byte, subject string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(grantTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeAdminGrantInvalid, "sign report grant", err)
	}
	return signed, nil
}

// parseGrant verifies a report grant and returns its subject.
func parseGrant(secret []byte, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperrors.New(apperrors.CodeAdminGrantInvalid, "report grant is required")
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeAdminGrantInvalid, "report grant is invalid", err)
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", apperrors.New(apperrors.CodeAdminGrantInvalid, "report grant subject is required")
	}
	return subject, nil
}

// handleAdmin serves the report login form (GET without a grant), the lead
// report (GET with a valid grant), and the password exchange (POST).
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.serveAdminPage(w, r)
	case http.MethodPost:
		s.serveAdminLogin(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s *Server) serveAdminPage(w http.ResponseWriter, r *http.Request) {
	subject := ""
	var grantErr error
	if cookie, err := r.Cookie(grantCookieName); err == nil {
		subject, grantErr = parseGrant(s.cfg.AdminSecret, cookie.Value)
	}

	notice, hasNotice := flash.ReadAndClear(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if subject == "" {
		// A presented-but-rejected grant answers with the error's status
		// while still rendering the login form.
		var domainErr *apperrors.Error
		if grantErr != nil && stderrors.As(grantErr, &domainErr) {
			w.WriteHeader(domainErr.HTTPStatus())
		}
		page := templates.Layout(0, notice, hasNotice, templates.AdminLogin())
		if err := page.Render(r.Context(), w); err != nil {
			s.logger.Printf("render admin login: %v", err)
		}
		return
	}

	heading, table := s.reportFor(r, subject)
	page := templates.Layout(0, notice, hasNotice, templates.AdminReport(heading, table))
	if err := page.Render(r.Context(), w); err != nil {
		s.logger.Printf("render admin report: %v", err)
	}
}

func (s *Server) serveAdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	subject, err := s.grantSubjectForPassword(r.PostFormValue("password"))
	if err != nil {
		flash.Write(w, r, flash.NoticeError("密碼錯誤"))
		http.Redirect(w, r, routepath.Admin, http.StatusSeeOther)
		return
	}

	grant, err := issueGrant(s.cfg.AdminSecret, subject, time.Now())
	if err != nil {
		s.logger.Printf("issue report grant: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     grantCookieName,
		Value:    grant,
		Path:     routepath.Admin,
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(grantTTL.Seconds()),
	})
	http.Redirect(w, r, routepath.Admin, http.StatusSeeOther)
}

// grantSubjectForPassword maps a submitted password to a grant subject: the
// configured master password unlocks everything, an operator's roster
// password unlocks that operator's rows.
func (s *Server) grantSubjectForPassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return "", apperrors.New(apperrors.CodeAdminPasswordInvalid, "report password is required")
	}
	if s.cfg.AdminPassword != "" && passwordEqual(password, s.cfg.AdminPassword) {
		return grantSubjectMaster, nil
	}
	for _, record := range s.cfg.Roster.Records() {
		if record.Password != "" && passwordEqual(password, record.Password) {
			return record.Ref, nil
		}
	}
	return "", apperrors.New(apperrors.CodeAdminPasswordInvalid, "report password does not match")
}

func passwordEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// reportFor loads the lead table visible to a grant subject.
func (s *Server) reportFor(r *http.Request, subject string) (string, storage.Table) {
	table, err := s.cfg.Store.ReadTable(r.Context(), lead.TableLeads)
	if err != nil {
		if !storage.IsNotFound(err) {
			s.logger.Printf("read leads for report: %v", err)
		}
		table = storage.Table{Columns: append([]string(nil), lead.Columns...)}
	}

	if subject == grantSubjectMaster {
		return "📊 團隊全名單（主控）", table
	}

	name := subject
	if record, ok := s.cfg.Roster.Lookup(subject); ok {
		name = record.Name
	}
	refIndex := table.ColumnIndex("ref")
	filtered := storage.Table{Columns: table.Columns}
	if refIndex >= 0 {
		for _, row := range table.Rows {
			if refIndex < len(row) && partner.NormalizeRef(row[refIndex]) == partner.NormalizeRef(subject) {
				filtered.Rows = append(filtered.Rows, row)
			}
		}
	}
	return "📈 " + name + " 的個人名單", filtered
}
