package flux

import "fmt"

// Step handler names, the closed vocabulary a Steps table may use.
const (
	StepStart   = "start"
	StepSuccess = "success"
	StepFailure = "failure"
	StepFinish  = "finish"
	StepAlways  = "always"
)

// Step computes a replacement state for one lifecycle stage.
type Step[S any] func(state S, a *Action) S

// Steps maps lifecycle stage names to state-update functions. Valid keys
// are exactly StepStart, StepSuccess, StepFailure, StepFinish, and
// StepAlways; an absent key is identity. The table is caller-owned and
// read-only to the router.
type Steps[S any] map[string]Step[S]

// Mode selects how much validation a Router performs per call.
type Mode int

const (
	// Validate checks every Steps key against the known vocabulary on
	// each call. The default; use it everywhere except measured hot
	// paths.
	Validate Mode = iota

	// Fast skips the per-call key scan. Unknown keys are silently
	// ignored. Marker and nil-handler checks still apply.
	Fast
)

// Router routes a lifecycle-tagged action through a Steps table. The
// validation mode is fixed at construction.
//
// Routing is pure: same state, action, and steps yield the same result
// whenever the step functions are themselves pure. The router knows
// nothing of transaction IDs; those are informational metadata.
type Router[S any] struct {
	mode Mode
}

// NewRouter creates a Router with the given validation mode.
func NewRouter[S any](mode Mode) Router[S] {
	return Router[S]{mode: mode}
}

// Handle routes action a through steps with full validation. It is
// shorthand for NewRouter[S](Validate).Handle.
func Handle[S any](state S, a *Action, steps Steps[S]) S {
	return Router[S]{mode: Validate}.Handle(state, a, steps)
}

// Handle applies the step functions matching the action's lifecycle
// stage: a start action runs the start step; a success action runs
// success then finish; a failure action runs failure then finish; an
// unrecognized stage applies no stage step. The always step runs last,
// unconditionally. Absent steps pass the state through unchanged.
//
// Handle panics on programming errors: an action without a lifecycle
// marker, an unknown Steps key (Validate mode only), or a nil function
// stored under a valid key. The panic message names the action type and
// the offending key.
func (r Router[S]) Handle(state S, a *Action, steps Steps[S]) S {
	if a.Meta.Lifecycle == "" {
		panic(fmt.Sprintf("flux: Handle called with non-lifecycle action %q: missing lifecycle marker", a.Type))
	}

	if r.mode == Validate {
		for key := range steps {
			switch key {
			case StepStart, StepSuccess, StepFailure, StepFinish, StepAlways:
			default:
				panic(fmt.Sprintf("flux: unknown handler key %q for action type %q (valid keys: start, success, failure, finish, always)", key, a.Type))
			}
		}
	}

	switch a.Meta.Lifecycle {
	case StageStart:
		state = r.apply(state, a, steps, StepStart)
	case StageSuccess:
		state = r.apply(state, a, steps, StepSuccess)
		state = r.apply(state, a, steps, StepFinish)
	case StageFailure:
		state = r.apply(state, a, steps, StepFailure)
		state = r.apply(state, a, steps, StepFinish)
	default:
		// Unrecognized stage: forward-compatibility no-op.
	}

	return r.apply(state, a, steps, StepAlways)
}

// apply runs one slot if present. A key present with a nil function is a
// configuration error, not identity.
func (r Router[S]) apply(state S, a *Action, steps Steps[S], key string) S {
	step, ok := steps[key]
	if !ok {
		return state
	}
	if step == nil {
		panic(fmt.Sprintf("flux: nil handler for key %q on action type %q", key, a.Type))
	}
	return step(state, a)
}
