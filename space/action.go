package space

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hupe1980/webreasoner/core"
)

// Action subsets.
const (
	SubsetChat = "chat"
	SubsetBID  = "bid"
	SubsetNav  = "nav"
)

// Function describes one browser action.
type Function struct {
	Signature   string
	Description string
	Example     string
}

// Name returns the function name.
func (f Function) Name() string {
	if i := strings.IndexByte(f.Signature, '('); i >= 0 {
		return f.Signature[:i]
	}
	return f.Signature
}

var functions = map[string][]Function{
	SubsetChat: {
		{"send_msg_to_user(text: str)", "Sends a message to the user. Use it to answer and to finish the task.", `send_msg_to_user("The price is $12.")`},
	},
	SubsetBID: {
		{"fill(bid: str, value: str)", "Fills out a form field.", `fill("237", "example value")`},
		{"click(bid: str, button: str = 'left')", "Clicks an element.", `click("51")`},
		{"dblclick(bid: str)", "Double clicks an element.", `dblclick("12")`},
		{"hover(bid: str)", "Hovers over an element.", `hover("b8")`},
		{"press(bid: str, key_comb: str)", "Focuses an element and presses a key combination.", `press("88", "Enter")`},
		{"focus(bid: str)", "Focuses an element.", `focus("b455")`},
		{"clear(bid: str)", "Clears a form field.", `clear("996")`},
		{"select_option(bid: str, options: str | list[str])", "Selects one or more options of a select element.", `select_option("a48", "blue")`},
		{"scroll(delta_x: float, delta_y: float)", "Scrolls the page.", `scroll(0, 200)`},
	},
	SubsetNav: {
		{"go_back()", "Navigates to the previous page in history.", `go_back()`},
		{"go_forward()", "Navigates to the next page in history.", `go_forward()`},
		{"goto(url: str)", "Navigates to a url.", `goto("http://www.example.com")`},
	},
}

var (
	fenceRe = regexp.MustCompile("(?s)```(?:python)?\\s*(.*?)```")
	callRe  = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

// BrowserActionSpace describes and normalizes browser actions.
type BrowserActionSpace struct {
	subsets     []string
	strict      bool
	multiAction bool
	errorAction string
	known       map[string]struct{}
	description string
}

// ActionSpaceOptions configure a BrowserActionSpace.
type ActionSpaceOptions struct {
	Subsets     []string
	UseNav      bool
	Strict      bool
	MultiAction bool
	// ErrorAction replaces unknown functions in strict mode.
	ErrorAction string
}

// NewBrowserActionSpace creates a BrowserActionSpace. Defaults to the chat and
// bid subsets.
func NewBrowserActionSpace(optFns ...func(o *ActionSpaceOptions)) *BrowserActionSpace {
	opts := ActionSpaceOptions{Subsets: []string{SubsetChat, SubsetBID}}
	for _, fn := range optFns {
		fn(&opts)
	}
	subsets := append([]string(nil), opts.Subsets...)
	if opts.UseNav && !contains(subsets, SubsetNav) {
		subsets = append(subsets, SubsetNav)
	}

	s := &BrowserActionSpace{
		subsets:     subsets,
		strict:      opts.Strict,
		multiAction: opts.MultiAction,
		errorAction: opts.ErrorAction,
		known:       make(map[string]struct{}),
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d different types of actions are available.\n", s.count())
	for _, sub := range subsets {
		for _, f := range functions[sub] {
			s.known[f.Name()] = struct{}{}
			fmt.Fprintf(&b, "\n%s\n    %s\n    Example: %s\n", f.Signature, f.Description, f.Example)
		}
	}
	if !opts.MultiAction {
		b.WriteString("\nOnly a single action can be provided at once.")
	}
	s.description = strings.TrimRight(b.String(), "\n")
	return s
}

func (s *BrowserActionSpace) count() int {
	n := 0
	for _, sub := range s.subsets {
		n += len(functions[sub])
	}
	return n
}

// Describe implements core.Describer.
func (s *BrowserActionSpace) Describe() string { return s.description }

// Functions returns the names of the available functions, sorted.
func (s *BrowserActionSpace) Functions() []string {
	out := make([]string, 0, len(s.known))
	for k := range s.known {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseAction implements core.ActionSpace. It strips code fences and
// surrounding whitespace and keeps only the first call unless multi-action
// is enabled.
func (s *BrowserActionSpace) ParseAction(action string, info core.StepInfo) (string, core.StepInfo) {
	parsed := strings.TrimSpace(action)
	if m := fenceRe.FindStringSubmatch(parsed); m != nil {
		parsed = strings.TrimSpace(m[1])
	}
	if !s.multiAction {
		parsed = firstCall(parsed)
	}

	valid := true
	if name := functionName(parsed); name == "" {
		valid = false
	} else if _, ok := s.known[name]; !ok {
		valid = false
	}
	info.SetExtra("raw_action", action)
	info.SetExtra("action_valid", valid)
	if !valid && s.strict && s.errorAction != "" {
		parsed = s.errorAction
	}
	info.Action = parsed
	return parsed, info
}

func functionName(action string) string {
	if m := callRe.FindStringSubmatch(action); m != nil {
		return m[1]
	}
	return ""
}

// firstCall returns the first function call in action, which may span
// several lines.
func firstCall(action string) string {
	lines := strings.Split(action, "\n")
	offset := 0
	for _, line := range lines {
		if functionName(line) != "" {
			return strings.TrimSpace(callPrefix(action[offset:]))
		}
		offset += len(line) + 1
	}
	return action
}

// callPrefix returns text up to the parenthesis closing the first call.
func callPrefix(text string) string {
	depth := 0
	var quote rune
	escaped := false
	for i, r := range text {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			switch r {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return text
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
