package game

import (
	"encoding/json"
	"fmt"
)

type Side int

const (
	First Side = iota
	Second
)

func (s Side) Other() Side {
	if s == First {
		return Second
	} else {
		return First
	}
}

func (s Side) String() string {
	if s == First {
		return "first"
	} else {
		return "second"
	}
}

func (s *Side) FromString(str string) error {
	switch str {
	case "first":
		*s = First
	case "second":
		*s = Second
	default:
		return fmt.Errorf("invalid side %q", str)
	}
	return nil
}

func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return s.FromString(str)
}

type Mode int

const (
	// One human side against the adversary strategy, which always plays Second.
	SingleOpponent Mode = iota
	TwoParticipant
)

func (m Mode) String() string {
	switch m {
	case SingleOpponent:
		return "single"
	case TwoParticipant:
		return "two"
	default:
		panic("invalid mode")
	}
}

func (m *Mode) FromString(str string) error {
	switch str {
	case "single":
		*m = SingleOpponent
	case "two":
		*m = TwoParticipant
	default:
		return fmt.Errorf("invalid mode %q", str)
	}
	return nil
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

type Phase int

const (
	InProgress Phase = iota
	Concluded
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case Concluded:
		return "concluded"
	default:
		panic("invalid phase")
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
