package workflow

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrUnknownAction        = errors.New("unknown action")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
	ErrForbidden            = errors.New("role may not perform this action")
	ErrCommentRequired      = errors.New("comment is required")
)

// Mode says how a transition reaches the backend.
type Mode int

const (
	// ModeEndpoint posts {comment?} to /{resource}/{id}/{endpoint}.
	ModeEndpoint Mode = iota + 1
	// ModeStatusPatch puts {status, notes?} to /{resource}/{id}.
	ModeStatusPatch
)

func (m Mode) String() string {
	switch m {
	case ModeEndpoint:
		return "endpoint"
	case ModeStatusPatch:
		return "status-patch"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type Transition struct {
	Action          Action
	Label           string
	From            []Status
	To              Status
	Mode            Mode
	Endpoint        string // URL segment for ModeEndpoint; defaults to Action
	CommentRequired bool
	Roles           []Role // empty means any role
}

// Path returns the URL segment of an endpoint transition.
func (t Transition) Path() string {
	if t.Endpoint != "" {
		return t.Endpoint
	}

	return string(t.Action)
}

// Permits reports whether role may perform t. Admins pass every gate and an
// unknown (empty) role is left to the backend to decide.
func (t Transition) Permits(role Role) bool {
	if len(t.Roles) == 0 || role == "" || role == RoleAdmin {
		return true
	}

	return slices.Contains(t.Roles, role)
}

// Machine is the transition table of one entity kind. It is the only place
// that decides which actions are offered for a status and how they are sent.
type Machine struct {
	Kind        string
	Initial     Status
	States      []Status
	Editable    []Status
	Terminal    []Status
	Badges      map[Status]Badge // overrides the shared vocabulary
	Transitions []Transition
}

// Badge never fails: a status the machine does not know is shown as is.
func (m *Machine) Badge(s Status) Badge {
	if b, ok := m.Badges[s]; ok {
		return b
	}

	if m.Known(s) {
		if b, ok := vocabulary[s]; ok {
			return b
		}
	}

	return RawBadge(s)
}

func (m *Machine) Known(s Status) bool {
	return slices.Contains(m.States, s)
}

func (m *Machine) IsEditable(s Status) bool {
	return slices.Contains(m.Editable, s)
}

func (m *Machine) IsTerminal(s Status) bool {
	return slices.Contains(m.Terminal, s)
}

// Available lists the transitions role may start from status, in table order.
func (m *Machine) Available(s Status, role Role) []Transition {
	if m.IsTerminal(s) {
		return nil
	}

	var out []Transition

	for _, t := range m.Transitions {
		if slices.Contains(t.From, s) && t.Permits(role) {
			out = append(out, t)
		}
	}

	return out
}

// Can is Available narrowed to one action.
func (m *Machine) Can(s Status, action Action, role Role) bool {
	return slices.ContainsFunc(m.Available(s, role), func(t Transition) bool {
		return t.Action == action
	})
}

// Plan checks that action may be performed from status and returns the
// transition to execute.
func (m *Machine) Plan(s Status, action Action, role Role, comment string) (Transition, error) {
	known := false

	for _, t := range m.Transitions {
		if t.Action != action {
			continue
		}

		known = true

		if !slices.Contains(t.From, s) || m.IsTerminal(s) {
			continue
		}

		if !t.Permits(role) {
			return Transition{}, fmt.Errorf("%s %s as %q: %w", m.Kind, action, role, ErrForbidden)
		}

		if t.CommentRequired && strings.TrimSpace(comment) == "" {
			return Transition{}, fmt.Errorf("%s %s: %w", m.Kind, action, ErrCommentRequired)
		}

		return t, nil
	}

	if !known {
		return Transition{}, fmt.Errorf("%s %s: %w", m.Kind, action, ErrUnknownAction)
	}

	return Transition{}, fmt.Errorf("%s %s from %s: %w", m.Kind, action, s, ErrTransitionNotAllowed)
}

// Validate checks the table for internal consistency.
func (m *Machine) Validate() error {
	var errs []error

	if m.Kind == "" {
		errs = append(errs, errors.New("kind is empty"))
	}

	if !m.Known(m.Initial) {
		errs = append(errs, fmt.Errorf("initial state %q is not a state", m.Initial))
	}

	for _, s := range slices.Concat(m.Editable, m.Terminal) {
		if !m.Known(s) {
			errs = append(errs, fmt.Errorf("state %q is not declared", s))
		}
	}

	seen := make(map[string]bool)

	for _, t := range m.Transitions {
		if t.Mode != ModeEndpoint && t.Mode != ModeStatusPatch {
			errs = append(errs, fmt.Errorf("%s: invalid mode %d", t.Action, t.Mode))
		}

		if !m.Known(t.To) {
			errs = append(errs, fmt.Errorf("%s: target %q is not a state", t.Action, t.To))
		}

		if len(t.From) == 0 {
			errs = append(errs, fmt.Errorf("%s: no source states", t.Action))
		}

		for _, from := range t.From {
			if !m.Known(from) {
				errs = append(errs, fmt.Errorf("%s: source %q is not a state", t.Action, from))
			}

			if m.IsTerminal(from) {
				errs = append(errs, fmt.Errorf("%s: leaves terminal state %q", t.Action, from))
			}

			k := string(t.Action) + "|" + string(from)
			if seen[k] {
				errs = append(errs, fmt.Errorf("%s: duplicate edge from %q", t.Action, from))
			}

			seen[k] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("workflow %s: %w", m.Kind, errors.Join(errs...))
	}

	return nil
}
