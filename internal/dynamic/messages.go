package dynamic

import "fmt"

// #region issue-messages

var issueMessages = map[Issue]string{
	IssueDirectionWrong:           "Move your hand in the required direction",
	IssueTooFast:                  "Slow down a little",
	IssueTooSlow:                  "Move a bit faster",
	IssueTooShort:                 "Make the movement bigger",
	IssueNotContinuous:            "Keep the movement smooth, one stroke",
	IssueNotCircular:              "Round out the motion into a circle",
	IssueNeedMoreDirectionChanges: "Add the back-and-forth movement",
	IssueRotationInsufficient:     "Rotate your hand further",
	IssueStartPoseDegrading:       "Keep your hand shape while moving",
}

var failureMessages = map[FailureReason]string{
	FailureWrongPath:    "The movement path didn't match, try again",
	FailureTooSlow:      "Too slow that time, keep the motion going",
	FailureTimeout:      "Time ran out, start the movement again",
	FailureShapeLost:    "Hand shape was lost during the movement",
	FailureWrongEndPose: "Finish with the ending hand shape",
	FailureInterrupted:  "The movement was interrupted, try again",
}

// #endregion issue-messages

// #region lookup

// IssueMessage maps a detected issue to its corrective phrase, appending the
// gesture's hint when one is authored.
func IssueMessage(issue Issue, def Definition) string {
	msg, ok := issueMessages[issue]
	if !ok {
		return ""
	}
	if def.Hint != "" {
		return fmt.Sprintf("%s (%s)", msg, def.Hint)
	}
	return msg
}

// FailureMessage maps a recognizer failure to its phrase, locating the
// gesture sub-phase when the reason alone is ambiguous.
func FailureMessage(reason FailureReason, gesturePhase GesturePhase) string {
	msg, ok := failureMessages[reason]
	if !ok {
		msg = "Not quite, try the movement again"
	}
	if reason == FailureInterrupted && gesturePhase == GesturePhaseStart {
		msg = "Hold the starting shape, then begin the movement"
	}
	return msg
}

// SuccessMessage is the latched message for a completed gesture.
func SuccessMessage(name string) string {
	if name == "" {
		return "Great, movement complete"
	}
	return fmt.Sprintf("Great, %q complete", name)
}

// #endregion lookup
