package game

type RejectReason int

const (
	ReasonOutOfBounds RejectReason = iota
	ReasonAlreadyAttacked
	ReasonNotYourTurn
	ReasonMatchConcluded
	ReasonAdversaryTurn
)

// ErrorInvalidCommand is returned for attempted moves that the match
// rejects. A rejected command never changes any state.
type ErrorInvalidCommand struct {
	Reason RejectReason
}

var (
	ErrOutOfBounds     error = &ErrorInvalidCommand{ReasonOutOfBounds}
	ErrAlreadyAttacked error = &ErrorInvalidCommand{ReasonAlreadyAttacked}
	ErrNotYourTurn     error = &ErrorInvalidCommand{ReasonNotYourTurn}
	ErrMatchConcluded  error = &ErrorInvalidCommand{ReasonMatchConcluded}
	ErrAdversaryTurn   error = &ErrorInvalidCommand{ReasonAdversaryTurn}
)

// Any *ErrorInvalidCommand matches ErrInvalidCommand.
var ErrInvalidCommand error = &ErrorInvalidCommand{Reason: -1}

func (e *ErrorInvalidCommand) Is(target error) bool {
	if err, ok := target.(*ErrorInvalidCommand); ok {
		return err.Reason == -1 || e.Reason == err.Reason
	}

	return false
}

func (e *ErrorInvalidCommand) Error() string {
	switch e.Reason {
	case ReasonOutOfBounds:
		return "attack out of bounds"
	case ReasonAlreadyAttacked:
		return "cell already attacked"
	case ReasonNotYourTurn:
		return "not your turn"
	case ReasonMatchConcluded:
		return "match already concluded"
	case ReasonAdversaryTurn:
		return "adversary is playing this side"
	default:
		return "invalid command"
	}
}
