package crawler

// State is a pagination controller phase
type State int

const (
	Unauthenticated State = iota
	AwaitingLogin
	Searching
	Scrolling
	Draining
	Done
	Aborted
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "Unauthenticated"
	case AwaitingLogin:
		return "AwaitingLogin"
	case Searching:
		return "Searching"
	case Scrolling:
		return "Scrolling"
	case Draining:
		return "Draining"
	case Done:
		return "Done"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions are possible
func (s State) Terminal() bool {
	return s == Done || s == Aborted
}

// StopReason explains why the scroll loop ended
type StopReason string

const (
	StopNone      StopReason = ""
	StopTarget    StopReason = "target"
	StopRoundCap  StopReason = "round_cap"
	StopExhausted StopReason = "exhausted"
)

// Observer receives progress notifications from a crawl
type Observer interface {
	StateChanged(state string)
	RoundCompleted(round, added, total int)
	LoginRequired(url string)
}

type nopObserver struct{}

func (nopObserver) StateChanged(string) {}
func (nopObserver) RoundCompleted(int, int, int) {}
func (nopObserver) LoginRequired(string) {}
