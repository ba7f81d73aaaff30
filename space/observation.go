package space

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/hupe1980/webreasoner/core"
)

// Raw observation keys.
const (
	KeyGoal            = "goal"
	KeyURL             = "url"
	KeyAXTree          = "axtree_txt"
	KeyLastAction      = "last_action"
	KeyLastActionError = "last_action_error"
	KeyOpenPagesURLs   = "open_pages_urls"
)

// TooManyErrorsAction ends an episode after repeated action errors.
const TooManyErrorsAction = "send_msg_to_user('Too many errors encountered. Task failed.')"

// DefaultMaxAXTreeChars bounds the accessibility tree when truncation is on.
const DefaultMaxAXTreeChars = 30000

const observationDescription = `The observation is a text rendering of the current browser page. It
contains the URL of the active page, the list of open tabs, the accessibility
tree of the page where every interactive element is prefixed with its bid in
square brackets (for example [42] button 'Search'), the previous action and
the error it raised, if any.`

// BrowserGymObservationSpace renders BrowserGym observations.
type BrowserGymObservationSpace struct{}

// NewBrowserGymObservationSpace creates a BrowserGymObservationSpace.
func NewBrowserGymObservationSpace() *BrowserGymObservationSpace {
	return &BrowserGymObservationSpace{}
}

// Describe implements core.Describer.
func (s *BrowserGymObservationSpace) Describe() string { return observationDescription }

// ParseObservation implements core.ObservationSpace.
func (s *BrowserGymObservationSpace) ParseObservation(raw core.RawObservation) (string, core.ObsInfo, error) {
	if raw == nil {
		return "", core.ObsInfo{}, fmt.Errorf("nil observation")
	}
	info := core.ObsInfo{Goal: str(raw, KeyGoal), URL: str(raw, KeyURL)}
	return renderObservation(raw, str(raw, KeyAXTree)), info, nil
}

// OpenDevinObservationSpace renders observations of the OpenDevin browser
// environment. It counts consecutive action errors and ends the episode once
// MaxErrors is reached. In eval mode the goal of the first observation is
// kept for the whole episode.
type OpenDevinObservationSpace struct {
	EvalMode       bool
	Truncation     bool
	MaxErrors      int
	MaxAXTreeChars int

	mu         sync.Mutex
	goal       string
	errorCount int
}

// NewOpenDevinObservationSpace creates an OpenDevinObservationSpace.
func NewOpenDevinObservationSpace(evalMode, truncation bool) *OpenDevinObservationSpace {
	return &OpenDevinObservationSpace{
		EvalMode:       evalMode,
		Truncation:     truncation,
		MaxErrors:      5,
		MaxAXTreeChars: DefaultMaxAXTreeChars,
	}
}

// Describe implements core.Describer.
func (s *OpenDevinObservationSpace) Describe() string { return observationDescription }

// ParseObservation implements core.ObservationSpace.
func (s *OpenDevinObservationSpace) ParseObservation(raw core.RawObservation) (string, core.ObsInfo, error) {
	if raw == nil {
		return "", core.ObsInfo{}, fmt.Errorf("nil observation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goal := str(raw, KeyGoal)
	if s.EvalMode {
		if s.goal == "" {
			s.goal = goal
		}
		goal = s.goal
	}
	info := core.ObsInfo{Goal: goal, URL: str(raw, KeyURL)}

	if str(raw, KeyLastActionError) != "" {
		s.errorCount++
	} else {
		s.errorCount = 0
	}
	info.Extra = map[string]any{"error_count": s.errorCount}
	if s.MaxErrors > 0 && s.errorCount >= s.MaxErrors {
		info.ReturnAction = TooManyErrorsAction
	}

	tree := str(raw, KeyAXTree)
	if s.Truncation && s.MaxAXTreeChars > 0 && len(tree) > s.MaxAXTreeChars {
		tree = truncate(tree, s.MaxAXTreeChars) + "\n...(truncated)"
		info.Extra["truncated"] = true
	}
	return renderObservation(raw, tree), info, nil
}

// Reset clears the error counter and the pinned goal.
func (s *OpenDevinObservationSpace) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goal = ""
	s.errorCount = 0
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func renderObservation(raw core.RawObservation, tree string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Current Page URL\n%s\n", str(raw, KeyURL))
	if tabs := strs(raw, KeyOpenPagesURLs); len(tabs) > 0 {
		b.WriteString("\n# Open Tabs\n")
		for i, u := range tabs {
			fmt.Fprintf(&b, "Tab %d: %s\n", i, u)
		}
	}
	fmt.Fprintf(&b, "\n# Current Accessibility Tree\n%s\n", tree)
	if a := str(raw, KeyLastAction); a != "" {
		fmt.Fprintf(&b, "\n# Previous Action\n%s\n", a)
	}
	if e := str(raw, KeyLastActionError); e != "" {
		fmt.Fprintf(&b, "\n# Error Message from Previous Action\n%s\n", e)
	}
	return strings.TrimRight(b.String(), "\n")
}

func str(raw core.RawObservation, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func strs(raw core.RawObservation, key string) []string {
	switch v := raw[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			out = append(out, fmt.Sprint(x))
		}
		return out
	default:
		return nil
	}
}
