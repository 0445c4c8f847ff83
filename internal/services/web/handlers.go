package web

import (
	"net/http"

	"github.com/a-h/templ"

	"github.com/leadfunnel/personaquiz/internal/partner"
	apperrors "github.com/leadfunnel/personaquiz/internal/platform/errors"
	"github.com/leadfunnel/personaquiz/internal/quiz"
	"github.com/leadfunnel/personaquiz/internal/services/web/platform/flash"
	"github.com/leadfunnel/personaquiz/internal/services/web/routepath"
	"github.com/leadfunnel/personaquiz/internal/services/web/templates"
)

// handleHome renders the visitor's current screen.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != routepath.Root {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	visitor := s.ensureSession(w, r)
	visitor.mu.Lock()
	defer visitor.mu.Unlock()
	s.renderScreen(w, r, visitor.quiz)
}

// handleStart moves the session from the intro form into the quiz.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	visitor, ok := s.formSession(w, r)
	if !ok {
		return
	}
	visitor.mu.Lock()
	defer visitor.mu.Unlock()
	if err := visitor.quiz.Start(r.PostFormValue("name"), r.PostFormValue("segment")); err != nil {
		flash.Write(w, r, flash.NoticeError("請先輸入你的名字"))
	}
	http.Redirect(w, r, routepath.Root, http.StatusSeeOther)
}

// handleAnswer records the picked option and steps forward or back.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	visitor, ok := s.formSession(w, r)
	if !ok {
		return
	}
	visitor.mu.Lock()
	defer visitor.mu.Unlock()
	pick := quiz.Tag(r.PostFormValue("pick"))
	var err error
	switch r.PostFormValue("direction") {
	case "prev":
		err = visitor.quiz.Prev(pick)
	default:
		err = visitor.quiz.Next(pick)
	}
	if err != nil {
		flash.Write(w, r, flash.NoticeError("請選擇一個最像你的選項"))
	}
	http.Redirect(w, r, routepath.Root, http.StatusSeeOther)
}

// handleInterest stores the contact-interest choice gathered on the result
// screen; recording itself happens on the next result render.
func (s *Server) handleInterest(w http.ResponseWriter, r *http.Request) {
	visitor, ok := s.formSession(w, r)
	if !ok {
		return
	}
	visitor.mu.Lock()
	defer visitor.mu.Unlock()
	if err := visitor.quiz.SetInterest(r.PostFormValue("interest")); err != nil {
		if apperrors.Is(err, apperrors.CodeInterestMissing) {
			flash.Write(w, r, flash.NoticeError("請先選擇你的意願"))
		} else {
			flash.Write(w, r, flash.NoticeWarning("名單已送出，意願無法再修改"))
		}
	}
	http.Redirect(w, r, routepath.Root, http.StatusSeeOther)
}

// handleRestart resets the session to the intro screen.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	visitor, ok := s.formSession(w, r)
	if !ok {
		return
	}
	visitor.mu.Lock()
	visitor.quiz.Restart()
	visitor.mu.Unlock()
	http.Redirect(w, r, routepath.Root, http.StatusSeeOther)
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// formSession loads the visitor session for a POST transition.
func (s *Server) formSession(w http.ResponseWriter, r *http.Request) (*visitorSession, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return nil, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}
	return s.ensureSession(w, r), true
}

// renderScreen draws the page for the session's current screen.
func (s *Server) renderScreen(w http.ResponseWriter, r *http.Request, sess *quiz.Session) {
	operator := s.cfg.Roster.Resolve(sess.Ref)

	var body templ.Component
	var inline flash.Notice
	var hasInline bool
	switch sess.Screen {
	case quiz.ScreenQuiz:
		body = templates.WithPartnerCard(operator, sess.Debug, s.quizBody(sess))
	case quiz.ScreenResult:
		if err := sess.GuardResult(); err != nil {
			s.logger.Printf("blocked result render: %v", err)
			inline = flash.NoticeWarning("還有題目沒作答，先完成測驗吧")
			hasInline = true
			body = templates.WithPartnerCard(operator, sess.Debug, s.quizBody(sess))
			break
		}
		body = templates.WithPartnerCard(operator, sess.Debug, s.resultBody(r, sess, operator))
	default:
		body = templates.Intro(operator, sess.Name, sess.Segment, sess.Debug)
	}

	notice, hasNotice := flash.ReadAndClear(w, r)
	if !hasNotice && hasInline {
		notice, hasNotice = inline, true
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.Layout(sess.Progress(), notice, hasNotice, body)
	if err := page.Render(r.Context(), w); err != nil {
		s.logger.Printf("render %s screen: %v", sess.Screen, err)
	}
}

func (s *Server) quizBody(sess *quiz.Session) templ.Component {
	step := sess.Step
	if step < 1 {
		step = 1
	}
	if step > quiz.Total {
		step = quiz.Total
	}
	question := quiz.Questions()[step-1]
	return templates.Question(step, question, sess.Selection(step))
}

// resultBody scores the session, attempts the lead write, and builds the
// result page. RecordOnce is idempotent, so calling it on every render is
// how a failed write gets retried.
func (s *Server) resultBody(r *http.Request, sess *quiz.Session, operator partner.Record) templ.Component {
	result := quiz.Score(sess.Answers)

	view := templates.ResultView{
		Name:     sess.Name,
		Label:    quiz.ResultLabel(result),
		Persona:  quiz.PersonaFor(result.Primary),
		Interest: sess.Interest,
		Debug:    sess.Debug,
	}

	if err := s.cfg.Recorder.RecordOnce(r.Context(), sess, operator, result); err != nil {
		s.logger.Printf("record lead (ref=%s): %v", operator.Ref, err)
		if apperrors.Is(err, apperrors.CodeLeadStoreUnavailable) {
			view.StoreWarning = true
			view.StoreDetail = err.Error()
		}
	}
	view.Recorded = sess.Recorded

	handle := operator.LineSearchID
	if handle == "" {
		handle = s.cfg.MasterLineHandle
	}
	view.AddFriendURL = partner.AddFriendURL(handle)

	return templates.Result(view)
}
