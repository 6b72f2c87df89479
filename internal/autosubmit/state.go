package autosubmit

// State names a step of the submission state machine. Progression is strictly
// linear; a guard failure at state S terminates the run in S_FAILED.
type State string

const (
	StateInit       State = "INIT"
	StateDetectSite State = "DETECT_SITE"
	StateNavigate   State = "NAVIGATE"
	StateLogin      State = "LOGIN"
	StateFormFill   State = "FORM_FILL"
	StateCaptcha    State = "CAPTCHA"
	StateSubmit     State = "SUBMIT"
	StateVerify     State = "VERIFY"

	// StateVerifySuccess is the single success terminal.
	StateVerifySuccess State = "VERIFY_SUCCESS"

	// StateExecutionError is the terminal for panics and unexpected errors
	// caught at the run boundary rather than by a state guard.
	StateExecutionError State = "EXECUTION_ERROR"
)

// Failed returns the terminal failure state named after s.
func (s State) Failed() State {
	return s + "_FAILED"
}
