package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/initiative/internal/engine"
	"github.com/roach88/initiative/internal/render"
)

// TraceEvent records one flow step and the encounter right after it.
type TraceEvent struct {
	Seq     int                    `json:"seq"`
	Op      string                 `json:"op"`
	Args    map[string]interface{} `json:"args,omitempty"`
	Found   *bool                  `json:"found,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Round   int                    `json:"round"`
	Index   int                    `json:"current_index"`
	Current string                 `json:"current,omitempty"`
	Order   []string               `json:"order"`
}

// String renders the event as one trace line, e.g.
//
//	03 damage amount=5 name=Goblin type=fire -> round=1 current=Aria order=[Aria, Goblin]
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d %s", e.Seq, e.Op)
	for _, key := range sortedKeys(e.Args) {
		fmt.Fprintf(&b, " %s=%v", key, e.Args[key])
	}
	if e.Found != nil && !*e.Found {
		b.WriteString(" (not found)")
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " (error: %s)", e.Error)
	}

	current := e.Current
	if current == "" {
		current = "-"
	}
	fmt.Fprintf(&b, " -> round=%d current=%s order=[%s]", e.Round, current, strings.Join(e.Order, ", "))
	return b.String()
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per flow step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Final is the encounter after the last flow step.
	Final engine.Snapshot `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// TraceText renders the trace followed by the final encounter table.
// Golden files hold exactly this text.
func (r *Result) TraceText(name string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", name)
	for _, ev := range r.Trace {
		b.WriteString(ev.String())
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if err := render.Encounter(&b, r.Final.State(), r.Final.Combatants); err != nil {
		return "", err
	}
	return b.String(), nil
}
