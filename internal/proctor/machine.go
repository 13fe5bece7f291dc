// Package proctor drives an attempt on the client side: the total and
// per-question countdowns, question locking, navigation guards and the
// anti-cheat monitor. Machine is a pure reducer; Runner connects it to a
// clock and to the server.
package proctor

import (
	"fmt"
	"sort"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	// PhaseFinished covers both an in-flight and a completed submission.
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Reason values match the server's submit reasons.
type Reason string

const (
	ReasonManual        Reason = "manual"
	ReasonTimeout       Reason = "timeout"
	ReasonViolation     Reason = "violation"
	ReasonQuestionTimer Reason = "question_timer"
)

const DefaultViolationThreshold = 3

// Config is what the machine needs from the fetched attempt.
type Config struct {
	QuestionCount int
	// OptionCounts, when set, bounds the option index accepted by Select.
	OptionCounts            []int
	TimeLimitMinutes        int
	PerQuestionTimerEnabled bool
	PerQuestionTimeMinutes  int
	OneTimeVisit            bool
	ViolationThreshold      int

	// Resume state from a previous session of the same attempt.
	RemainingSeconds int
	Answers          []*int
	LockedIndices    []int
	TabSwitchCount   int
}

type Machine struct {
	cfg              Config
	phase            Phase
	current          int
	answers          []*int
	locked           map[int]bool
	timeLeft         int
	questionTimeLeft int
	monitor          *Monitor
	leavePending     bool
	forfeited        bool
	submitting       bool
	submitted        bool
	pending          *Submit
}

func NewMachine(cfg Config) *Machine {
	m := &Machine{
		cfg:     cfg,
		answers: make([]*int, cfg.QuestionCount),
		locked:  make(map[int]bool, len(cfg.LockedIndices)),
		monitor: NewMonitor(cfg.ViolationThreshold, cfg.TabSwitchCount),
	}
	for i := 0; i < len(cfg.Answers) && i < cfg.QuestionCount; i++ {
		m.answers[i] = copyAnswer(cfg.Answers[i])
	}
	for _, idx := range cfg.LockedIndices {
		if idx >= 0 && idx < cfg.QuestionCount {
			m.locked[idx] = true
		}
	}
	return m
}

// Dispatch applies one signal and returns the effects the host must perform.
func (m *Machine) Dispatch(s Signal) []Effect {
	switch s := s.(type) {
	case Start:
		return m.start(s)
	case Tick:
		return m.tick()
	case GoTo:
		if m.phase != PhaseRunning {
			return nil
		}
		return m.goTo(s.Target)
	case Select:
		return m.selectAnswer(s)
	case HistoryPop:
		if m.phase != PhaseRunning {
			return nil
		}
		if s.LeavesAttempt {
			m.leavePending = true
			return []Effect{ConfirmLeave{}}
		}
		return m.goTo(s.Target)
	case LeaveConfirmed:
		if m.phase != PhaseRunning || !m.leavePending {
			return nil
		}
		m.leavePending = false
		m.phase = PhaseFinished
		m.forfeited = true
		return []Effect{Forfeit{}}
	case LeaveCancelled:
		m.leavePending = false
		return nil
	case UnloadAttempted:
		if m.phase != PhaseRunning {
			return nil
		}
		return []Effect{ConfirmUnload{}}
	case SubmitRequested:
		return m.submitRequested(s)
	case RetrySubmit:
		return m.retry()
	case SubmitFailed:
		if !m.submitting {
			return nil
		}
		m.submitting = false
		return []Effect{Notice{Message: "Submission failed, your answers are kept and will be sent again."}}
	case SubmitSucceeded:
		if !m.submitting {
			return nil
		}
		m.submitting = false
		m.submitted = true
		return nil
	case VisibilityLost:
		return m.visibilityLost()
	case VisibilityRestored:
		m.monitor.VisibilityRestored()
		return nil
	case FullscreenExited:
		if m.phase != PhaseRunning {
			return nil
		}
		return []Effect{
			Warning{Message: "Fullscreen was exited. Please return to fullscreen.", Count: m.monitor.Count(), Threshold: m.monitor.Threshold()},
			RequestFullscreen{},
		}
	}
	return nil
}

func (m *Machine) start(s Start) []Effect {
	if m.phase != PhaseIdle {
		return nil
	}
	m.phase = PhaseRunning
	m.timeLeft = m.cfg.TimeLimitMinutes * 60
	if m.cfg.RemainingSeconds > 0 && m.cfg.RemainingSeconds < m.timeLeft {
		m.timeLeft = m.cfg.RemainingSeconds
	}
	if next := m.nextUnlocked(0); next >= 0 {
		m.current = next
	}
	m.resetQuestionTimer()

	if s.FullscreenGranted {
		return nil
	}
	return []Effect{RequestFullscreen{}}
}

func (m *Machine) tick() []Effect {
	if m.phase != PhaseRunning {
		return nil
	}

	m.timeLeft--
	if m.timeLeft <= 0 {
		m.timeLeft = 0
		return m.forceSubmit(ReasonTimeout, "Time is up. Your answers have been submitted.")
	}

	if !m.cfg.PerQuestionTimerEnabled {
		return nil
	}
	m.questionTimeLeft--
	if m.questionTimeLeft > 0 {
		return nil
	}

	from := m.current
	m.locked[from] = true
	next := m.nextUnlocked(from + 1)
	if next < 0 {
		return m.forceSubmit(ReasonQuestionTimer, "Time for the last question is up. Your answers have been submitted.")
	}
	m.current = next
	m.resetQuestionTimer()
	return []Effect{Navigated{From: from, To: next}}
}

func (m *Machine) goTo(target int) []Effect {
	if target < 0 || target >= m.cfg.QuestionCount {
		return []Effect{Rejected{Message: fmt.Sprintf("Question %d does not exist.", target+1)}}
	}
	if target == m.current {
		return nil
	}
	if m.locked[target] {
		return []Effect{Rejected{Message: fmt.Sprintf("Question %d is locked and cannot be revisited.", target+1)}}
	}

	from := m.current
	if m.cfg.OneTimeVisit {
		m.locked[from] = true
	}
	m.current = target
	m.resetQuestionTimer()
	return []Effect{Navigated{From: from, To: target}}
}

func (m *Machine) selectAnswer(s Select) []Effect {
	if m.phase != PhaseRunning {
		return nil
	}
	if s.Index < 0 || s.Index >= m.cfg.QuestionCount {
		return []Effect{Rejected{Message: fmt.Sprintf("Question %d does not exist.", s.Index+1)}}
	}
	if m.locked[s.Index] {
		return []Effect{Rejected{Message: fmt.Sprintf("Question %d is locked.", s.Index+1)}}
	}
	if s.Option < 0 {
		m.answers[s.Index] = nil
		return nil
	}
	if s.Index < len(m.cfg.OptionCounts) && s.Option >= m.cfg.OptionCounts[s.Index] {
		return []Effect{Rejected{Message: "That option does not exist."}}
	}
	opt := s.Option
	m.answers[s.Index] = &opt
	return nil
}

func (m *Machine) submitRequested(s SubmitRequested) []Effect {
	switch m.phase {
	case PhaseRunning:
		if !s.Confirmed {
			return []Effect{ConfirmSubmit{Unanswered: m.unanswered()}}
		}
		m.phase = PhaseFinished
		return m.beginSubmit(ReasonManual, false)
	case PhaseFinished:
		return m.retry()
	}
	return nil
}

func (m *Machine) visibilityLost() []Effect {
	if m.phase != PhaseRunning {
		return nil
	}
	count, counted := m.monitor.VisibilityLost()
	if !counted {
		return nil
	}
	if m.monitor.Exceeded() {
		return m.forceSubmit(ReasonViolation, fmt.Sprintf("You left the test %d times. Your answers have been submitted.", count))
	}
	return []Effect{Warning{
		Message:   fmt.Sprintf("Leaving the test window is not allowed (%d/%d).", count, m.monitor.Threshold()),
		Count:     count,
		Threshold: m.monitor.Threshold(),
	}}
}

func (m *Machine) forceSubmit(reason Reason, message string) []Effect {
	if m.phase != PhaseRunning {
		return nil
	}
	m.phase = PhaseFinished
	m.leavePending = false
	return append([]Effect{Notice{Message: message}}, m.beginSubmit(reason, true)...)
}

func (m *Machine) beginSubmit(reason Reason, auto bool) []Effect {
	if m.submitting || m.submitted {
		return nil
	}
	m.submitting = true
	sub := Submit{Answers: m.Answers(), Reason: reason, Auto: auto}
	m.pending = &sub
	return []Effect{sub}
}

// retry re-sends the frozen submission after a failure.
func (m *Machine) retry() []Effect {
	if m.phase != PhaseFinished || m.pending == nil || m.submitting || m.submitted {
		return nil
	}
	m.submitting = true
	sub := *m.pending
	sub.Answers = copyAnswers(m.pending.Answers)
	return []Effect{sub}
}

func (m *Machine) resetQuestionTimer() {
	if m.cfg.PerQuestionTimerEnabled {
		m.questionTimeLeft = m.cfg.PerQuestionTimeMinutes * 60
	}
}

// nextUnlocked returns the first unlocked index at or after from, or -1.
func (m *Machine) nextUnlocked(from int) int {
	for i := from; i < m.cfg.QuestionCount; i++ {
		if !m.locked[i] {
			return i
		}
	}
	return -1
}

func (m *Machine) unanswered() int {
	n := 0
	for _, a := range m.answers {
		if a == nil {
			n++
		}
	}
	return n
}

func (m *Machine) Phase() Phase            { return m.phase }
func (m *Machine) Current() int            { return m.current }
func (m *Machine) TimeLeft() int           { return m.timeLeft }
func (m *Machine) QuestionTimeLeft() int   { return m.questionTimeLeft }
func (m *Machine) TabSwitchCount() int     { return m.monitor.Count() }
func (m *Machine) Submitting() bool        { return m.submitting }
func (m *Machine) Submitted() bool         { return m.submitted }
func (m *Machine) Forfeited() bool         { return m.forfeited }
func (m *Machine) IsLocked(index int) bool { return m.locked[index] }

// Answers returns a copy of the in-memory answers.
func (m *Machine) Answers() []*int {
	return copyAnswers(m.answers)
}

// Locked returns the locked indices in ascending order.
func (m *Machine) Locked() []int {
	out := make([]int, 0, len(m.locked))
	for idx := range m.locked {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Progress is the state persisted to the server while running.
type Progress struct {
	Answers        []*int
	LockedIndices  []int
	TabSwitchCount int
}

func (m *Machine) Progress() Progress {
	return Progress{Answers: m.Answers(), LockedIndices: m.Locked(), TabSwitchCount: m.TabSwitchCount()}
}

func copyAnswers(in []*int) []*int {
	out := make([]*int, len(in))
	for i, a := range in {
		out[i] = copyAnswer(a)
	}
	return out
}

func copyAnswer(a *int) *int {
	if a == nil {
		return nil
	}
	v := *a
	return &v
}
