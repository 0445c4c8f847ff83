package quiz

import (
	"fmt"
	"strings"

	apperrors "github.com/leadfunnel/personaquiz/internal/platform/errors"
)

// Screen identifies the page a session is on.
type Screen string

const (
	ScreenIntro  Screen = "intro"
	ScreenQuiz   Screen = "quiz"
	ScreenResult Screen = "result"
)

// Session is the whole state of one visitor's quiz run. Every interaction
// re-renders the page from this state, so each transition below must leave
// the session valid for an arbitrary number of re-renders.
type Session struct {
	Screen Screen
	// Step is the 1-based question ordinal, meaningful only on ScreenQuiz.
	Step int
	// Answers maps question ordinal to the chosen tag. Revisiting a
	// question overwrites its entry; it never grows past Total.
	Answers map[int]Tag

	Name     string
	Segment  string
	Interest string

	// Recorded flips true exactly once per completed session, after the
	// lead row has been durably written. Restart clears it.
	Recorded bool

	// Entry-query context, captured once when the session is created.
	Ref    string
	Mode   string
	Funnel string
	Debug  bool
}

// NewSession returns a fresh session on the intro screen.
func NewSession() *Session {
	return &Session{
		Screen:  ScreenIntro,
		Step:    1,
		Answers: make(map[int]Tag),
	}
}

// Start moves the session from the intro screen into the quiz. The name is
// required after trimming; on failure the session is unchanged and the
// intro screen re-renders with the validation message.
func (s *Session) Start(name, segment string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.CodeIntroNameEmpty, "name is required to start the quiz")
	}
	s.Name = name
	s.Segment = strings.TrimSpace(segment)
	s.Screen = ScreenQuiz
	s.Step = 1
	s.Answers = make(map[int]Tag)
	s.Interest = ""
	s.Recorded = false
	return nil
}

// Next records the current selection and advances one step, entering the
// result screen after the final question.
func (s *Session) Next(tag Tag) error {
	if err := s.record(tag); err != nil {
		return err
	}
	if s.Step < Total {
		s.Step++
		return nil
	}
	s.Screen = ScreenResult
	return nil
}

// Prev records the current selection and steps back, returning to the
// intro screen from the first question. Recording before moving means
// backward navigation never discards an in-progress choice.
func (s *Session) Prev(tag Tag) error {
	if err := s.record(tag); err != nil {
		return err
	}
	if s.Step > 1 {
		s.Step--
		return nil
	}
	s.Screen = ScreenIntro
	return nil
}

func (s *Session) record(tag Tag) error {
	if s.Screen != ScreenQuiz {
		return apperrors.WithMetadata(apperrors.CodeScreenTransition,
			"answer submitted outside the quiz screen",
			map[string]string{"Screen": string(s.Screen)})
	}
	if !ValidTag(tag) {
		return apperrors.WithMetadata(apperrors.CodeAnswerTagInvalid,
			"answer tag is not one of the persona letters",
			map[string]string{"Tag": string(tag)})
	}
	if s.Answers == nil {
		s.Answers = make(map[int]Tag)
	}
	s.Answers[s.Step] = tag
	return nil
}

// GuardResult is run on every entry into the result screen. When the
// answer set is incomplete it forces the session back to the quiz at
// ordinal max(1, |answers|) and reports the blocked transition, acting as
// a safety net against any path reaching the result prematurely.
func (s *Session) GuardResult() error {
	if s.Screen != ScreenResult {
		return nil
	}
	if len(s.Answers) >= Total {
		return nil
	}
	s.Screen = ScreenQuiz
	s.Step = len(s.Answers)
	if s.Step < 1 {
		s.Step = 1
	}
	return apperrors.New(apperrors.CodeResultIncomplete,
		fmt.Sprintf("result reached with %d of %d answers", len(s.Answers), Total))
}

// SetInterest stores the contact-interest choice gathered on the result
// screen. Blank choices are rejected and the field freezes once the lead
// has been recorded.
func (s *Session) SetInterest(interest string) error {
	if s.Recorded {
		return apperrors.New(apperrors.CodeInterestLocked, "interest cannot change after the lead is recorded")
	}
	interest = strings.TrimSpace(interest)
	if interest == "" {
		return apperrors.New(apperrors.CodeInterestMissing, "an interest choice is required")
	}
	s.Interest = interest
	return nil
}

// Restart resets the session to its initial intro state.
func (s *Session) Restart() {
	s.Screen = ScreenIntro
	s.Step = 1
	s.Name = ""
	s.Segment = ""
	s.Interest = ""
	s.Answers = make(map[int]Tag)
	s.Recorded = false
}

// Selection returns the tag to pre-select for a question ordinal: the
// previously saved answer, or the first option's tag when the ordinal has
// not been answered yet. It is a pure function of Answers.
func (s *Session) Selection(step int) Tag {
	if tag, ok := s.Answers[step]; ok {
		return tag
	}
	if step >= 1 && step <= Total {
		return questions[step-1].Options[0].Tag
	}
	return TagA
}

// Complete reports whether every ordinal has an answer.
func (s *Session) Complete() bool {
	return len(s.Answers) >= Total
}

// Progress returns the fraction of the quiz finished for the progress bar.
func (s *Session) Progress() float64 {
	switch s.Screen {
	case ScreenIntro:
		return 0
	case ScreenQuiz:
		p := float64(s.Step-1) / float64(Total)
		if p > 1 {
			return 1
		}
		return p
	default:
		return 1
	}
}
