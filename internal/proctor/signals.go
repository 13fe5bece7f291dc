package proctor

// Signal is an input to Machine.Dispatch: a browser event, a clock tick or
// the outcome of a submission.
type Signal interface {
	signal()
}

type Start struct {
	FullscreenGranted bool
}

type Tick struct{}

type GoTo struct {
	Target int
}

// Select sets the answer at Index. A negative Option clears it.
type Select struct {
	Index  int
	Option int
}

// HistoryPop is a browser back/forward. Target is the in-attempt question
// index when LeavesAttempt is false.
type HistoryPop struct {
	LeavesAttempt bool
	Target        int
}

type LeaveConfirmed struct{}

type LeaveCancelled struct{}

type UnloadAttempted struct{}

type SubmitRequested struct {
	Confirmed bool
}

type RetrySubmit struct{}

type SubmitFailed struct {
	Err error
}

type SubmitSucceeded struct{}

type VisibilityLost struct{}

type VisibilityRestored struct{}

type FullscreenExited struct{}

func (Start) signal()              {}
func (Tick) signal()               {}
func (GoTo) signal()               {}
func (Select) signal()             {}
func (HistoryPop) signal()         {}
func (LeaveConfirmed) signal()     {}
func (LeaveCancelled) signal()     {}
func (UnloadAttempted) signal()    {}
func (SubmitRequested) signal()    {}
func (RetrySubmit) signal()        {}
func (SubmitFailed) signal()       {}
func (SubmitSucceeded) signal()    {}
func (VisibilityLost) signal()     {}
func (VisibilityRestored) signal() {}
func (FullscreenExited) signal()   {}

// Effect is an instruction for the host: show something, ask the user, or
// talk to the server.
type Effect interface {
	effect()
}

type RequestFullscreen struct{}

type Rejected struct {
	Message string
}

type Warning struct {
	Message   string
	Count     int
	Threshold int
}

// Notice explains an automatic transition to the user.
type Notice struct {
	Message string
}

type Navigated struct {
	From, To int
}

type ConfirmLeave struct{}

type ConfirmUnload struct{}

type ConfirmSubmit struct {
	Unanswered int
}

type Submit struct {
	Answers []*int
	Reason  Reason
	Auto    bool
}

type Forfeit struct{}

func (RequestFullscreen) effect() {}
func (Rejected) effect()          {}
func (Warning) effect()           {}
func (Notice) effect()            {}
func (Navigated) effect()         {}
func (ConfirmLeave) effect()      {}
func (ConfirmUnload) effect()     {}
func (ConfirmSubmit) effect()     {}
func (Submit) effect()            {}
func (Forfeit) effect()           {}
