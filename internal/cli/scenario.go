package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/tradecoin/internal/presentation/tui"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/dsl"
	"github.com/aretw0/tradecoin/pkg/registry"
	"github.com/muesli/termenv"
)

// StepResult records the outcome of one step.
type StepResult struct {
	Step   dsl.Step
	Result any
	Err    error
	Passed bool
}

// Report summarizes a scenario run.
type Report struct {
	Results []StepResult
	Failed  int
}

// OK reports whether every step behaved as expected.
func (r Report) OK() bool { return r.Failed == 0 }

// RunScenario executes every step of sc in order, even after a failure, and prints one
// line per step plus the events it committed.
func RunScenario(ctx context.Context, ops *registry.Registry, events EventSource, sc dsl.Scenario, out io.Writer) (Report, error) {
	p := termenv.EnvColorProfile()
	var report Report
	if sc.Name != "" {
		fmt.Fprintf(out, "%s\n", p.String(sc.Name).Bold())
	}

	seq := lastSeq(events)
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := ops.Execute(ctx, step.Op, domain.Address(step.Caller), step.Args)
		res := StepResult{Step: step, Result: result, Err: err, Passed: matches(step, err)}
		report.Results = append(report.Results, res)

		mark := p.String("ok  ").Foreground(p.Color("#16a34a"))
		if !res.Passed {
			report.Failed++
			mark = p.String("FAIL").Foreground(p.Color("#dc2626"))
		}
		fmt.Fprintf(out, "%s %2d. %s%s\n", mark, i+1, step.Label(), outcome(res))

		for _, e := range events.Events(seq) {
			fmt.Fprintf(out, "         %s\n", tui.EventLine(p, e))
			seq = e.Seq
		}
	}
	fmt.Fprintf(out, "%d steps, %d failed\n", len(sc.Steps), report.Failed)
	return report, nil
}

// EventSource returns the committed events after a sequence number.
type EventSource interface {
	Events(since uint64) []domain.Event
}

func lastSeq(events EventSource) uint64 {
	all := events.Events(0)
	if len(all) == 0 {
		return 0
	}
	return all[len(all)-1].Seq
}

func matches(step dsl.Step, err error) bool {
	if step.ExpectError == "" {
		return err == nil
	}
	return err != nil && err.Error() == step.ExpectError
}

func outcome(res StepResult) string {
	switch {
	case res.Err != nil && res.Passed:
		return fmt.Sprintf(" (rejected: %s)", res.Err)
	case res.Err != nil:
		return fmt.Sprintf(": unexpected error: %s", res.Err)
	case !res.Passed:
		return fmt.Sprintf(": expected error %q", res.Step.ExpectError)
	case res.Result != nil:
		data, err := json.Marshal(res.Result)
		if err == nil {
			return " -> " + string(data)
		}
	}
	return ""
}
