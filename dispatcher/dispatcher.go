// Package dispatcher walks a program and offers every node to a set of rewrite rules.
package dispatcher

import (
	"github.com/pkg/errors"

	"github.com/arjunmahishi/reconstruct/ast"
	"github.com/arjunmahishi/reconstruct/util/contract"
	"github.com/arjunmahishi/reconstruct/util/logging"
)

// Rule is a single rewrite.  IsCandidate must not mutate; Reconstruct may mutate the node it was given
// and anything below it, but nothing else.
type Rule interface {
	Name() string
	IsCandidate(node ast.Node) bool
	Reconstruct(node ast.Node) error
}

// Counter is implemented by rules that count the rewrites they have made.
type Counter interface {
	Rewrites() int
}

// RuleReport summarizes one rule over one run.
type RuleReport struct {
	Name       string
	Candidates int
	Rewrites   int
}

// Report summarizes a run.
type Report struct {
	Visited int
	Rules   []RuleReport
}

// Rewrites returns the total number of rewrites across all rules.
func (r Report) Rewrites() int {
	n := 0
	for _, rule := range r.Rules {
		n += rule.Rewrites
	}
	return n
}

// Dispatcher applies rules in registration order.
type Dispatcher struct {
	rules []Rule
}

// New creates a Dispatcher with the given rules.
func New(rules ...Rule) *Dispatcher {
	d := &Dispatcher{}
	for _, rule := range rules {
		d.Register(rule)
	}
	return d
}

// Register appends a rule.
func (d *Dispatcher) Register(rule Rule) {
	contract.Requiref(rule != nil, "rule", "!= nil")
	d.rules = append(d.rules, rule)
}

// Rules returns the registered rules in order.
func (d *Dispatcher) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// Run checks prog and walks it in pre-order.  At every node each rule is asked IsCandidate and, if so,
// Reconstruct runs before the walk descends.  The first rule error aborts the run.
func (d *Dispatcher) Run(prog *ast.Program) (Report, error) {
	if err := ast.Check(prog); err != nil {
		return Report{}, err
	}

	v := &visitor{rules: d.rules, reports: make([]RuleReport, len(d.rules))}
	before := make([]int, len(d.rules))
	for i, rule := range d.rules {
		v.reports[i].Name = rule.Name()
		if c, ok := rule.(Counter); ok {
			before[i] = c.Rewrites()
		}
	}

	ast.Walk(v, prog)

	for i, rule := range d.rules {
		if c, ok := rule.(Counter); ok {
			v.reports[i].Rewrites = c.Rewrites() - before[i]
		}
	}
	report := Report{Visited: v.visited, Rules: v.reports}
	if v.err != nil {
		return report, v.err
	}
	logging.V(3).Infof("dispatch: visited %d nodes, %d rewrites", report.Visited, report.Rewrites())
	return report, nil
}

type visitor struct {
	rules   []Rule
	reports []RuleReport
	visited int
	err     error
}

func (v *visitor) Visit(node ast.Node) ast.Visitor {
	if v.err != nil {
		return nil
	}
	v.visited++
	for i, rule := range v.rules {
		if !rule.IsCandidate(node) {
			continue
		}
		v.reports[i].Candidates++
		if err := rule.Reconstruct(node); err != nil {
			v.err = errors.Wrapf(err, "rule %s", rule.Name())
			return nil
		}
	}
	return v
}

func (v *visitor) After(ast.Node) {}
