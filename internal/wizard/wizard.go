// Package wizard drives the step-by-step building of a solution as an
// explicit state machine: a State and an Action go in, the next State (or
// the reason the action is not allowed) comes out.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/valuecalc/internal/solution"
)

// Step is a stage of the wizard.
type Step string

// Steps in order. StepDone follows a successful submit.
const (
	StepIndustry     Step = "industry"
	StepTechnology   Step = "technology"
	StepSolution     Step = "solution"
	StepVariant      Step = "variant"
	StepParameters   Step = "parameters"
	StepCalculations Step = "calculations"
	StepReview       Step = "review"
	StepDone         Step = "done"
)

var steps = []Step{
	StepIndustry,
	StepTechnology,
	StepSolution,
	StepVariant,
	StepParameters,
	StepCalculations,
	StepReview,
	StepDone,
}

func (s Step) index() int {
	for i, step := range steps {
		if step == s {
			return i
		}
	}
	return -1
}

// ActionType names what the user did.
type ActionType string

// Actions.
const (
	ActionSelect            ActionType = "select"
	ActionNext              ActionType = "next"
	ActionBack              ActionType = "back"
	ActionAddParameter      ActionType = "add_parameter"
	ActionRemoveParameter   ActionType = "remove_parameter"
	ActionAddCalculation    ActionType = "add_calculation"
	ActionRemoveCalculation ActionType = "remove_calculation"
	ActionSubmit            ActionType = "submit"
)

// Action is one user interaction. Value carries the selection for
// ActionSelect and the id for the remove actions.
type Action struct {
	Type        ActionType            `json:"type"`
	Value       string                `json:"value,omitempty"`
	Parameter   *solution.Parameter   `json:"parameter,omitempty"`
	Calculation *solution.Calculation `json:"calculation,omitempty"`
}

// State is everything the wizard knows. The zero State starts at the
// industry step.
type State struct {
	Step     Step              `json:"step"`
	Solution solution.Solution `json:"solution"`
}

// Errors returned by Reduce.
var (
	ErrNoChoice      = errors.New("wizard: a choice is required")
	ErrWrongStep     = errors.New("wizard: action not allowed at this step")
	ErrAtStart       = errors.New("wizard: already at the first step")
	ErrUnknownAction = errors.New("wizard: unknown action")
	ErrNotFound      = errors.New("wizard: no such item")
)

// Reduce applies action to state. The input state is never modified; on
// error the returned state is the input state.
func Reduce(state State, action Action) (State, error) {
	if state.Step == "" {
		state.Step = StepIndustry
	}
	if state.Step.index() < 0 {
		return state, fmt.Errorf("wizard: unknown step %q", state.Step)
	}

	next := State{Step: state.Step, Solution: state.Solution.Clone()}
	var err error
	switch action.Type {
	case ActionSelect:
		err = next.selectChoice(action.Value)
	case ActionNext:
		err = next.advance()
	case ActionBack:
		err = next.back()
	case ActionAddParameter:
		err = next.addParameter(action.Parameter)
	case ActionRemoveParameter:
		err = next.remove(StepParameters, action.Value, next.Solution.RemoveParameter)
	case ActionAddCalculation:
		err = next.addCalculation(action.Calculation)
	case ActionRemoveCalculation:
		err = next.remove(StepCalculations, action.Value, next.Solution.RemoveCalculation)
	case ActionSubmit:
		err = next.submit()
	default:
		err = fmt.Errorf("%w %q", ErrUnknownAction, action.Type)
	}
	if err != nil {
		return state, err
	}
	return next, nil
}

// selectChoice records the choice for one of the selection steps and moves
// on. Changing an earlier choice clears the ones that depended on it.
func (s *State) selectChoice(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrNoChoice
	}

	sol := &s.Solution
	switch s.Step {
	case StepIndustry:
		if sol.IndustryID != value {
			sol.TechnologyID, sol.SolutionTypeID, sol.Variant = "", "", ""
		}
		sol.IndustryID = value
	case StepTechnology:
		if sol.TechnologyID != value {
			sol.SolutionTypeID, sol.Variant = "", ""
		}
		sol.TechnologyID = value
	case StepSolution:
		if sol.SolutionTypeID != value {
			sol.Variant = ""
		}
		sol.SolutionTypeID = value
	case StepVariant:
		sol.Variant = value
		if strings.TrimSpace(sol.Name) == "" {
			sol.Name = value
		}
	default:
		return fmt.Errorf("%w: select at %s", ErrWrongStep, s.Step)
	}

	s.Step = steps[s.Step.index()+1]
	return nil
}

func (s *State) advance() error {
	switch s.Step {
	case StepIndustry, StepTechnology, StepSolution, StepVariant:
		if s.choice() == "" {
			return ErrNoChoice
		}
	case StepParameters:
		if len(s.Solution.Parameters) == 0 {
			return fmt.Errorf("wizard: add at least one parameter")
		}
	case StepCalculations:
		if len(s.Solution.Calculations) == 0 {
			return fmt.Errorf("wizard: add at least one calculation")
		}
	default:
		return fmt.Errorf("%w: next at %s", ErrWrongStep, s.Step)
	}
	s.Step = steps[s.Step.index()+1]
	return nil
}

func (s *State) back() error {
	i := s.Step.index()
	if i == 0 {
		return ErrAtStart
	}
	if s.Step == StepDone {
		return fmt.Errorf("%w: solution already submitted", ErrWrongStep)
	}
	s.Step = steps[i-1]
	return nil
}

func (s *State) choice() string {
	switch s.Step {
	case StepIndustry:
		return s.Solution.IndustryID
	case StepTechnology:
		return s.Solution.TechnologyID
	case StepSolution:
		return s.Solution.SolutionTypeID
	case StepVariant:
		return s.Solution.Variant
	}
	return ""
}

func (s *State) addParameter(p *solution.Parameter) error {
	if s.Step != StepParameters {
		return fmt.Errorf("%w: add parameter at %s", ErrWrongStep, s.Step)
	}
	if p == nil {
		return fmt.Errorf("wizard: parameter is required")
	}
	if err := solution.ValidateParameter(*p); err != nil {
		return err
	}
	param := *p
	if param.ID == "" {
		param.ID = uuid.NewString()
	}
	for _, existing := range s.Solution.Parameters {
		if existing.ID != param.ID && strings.EqualFold(strings.TrimSpace(existing.Name), strings.TrimSpace(param.Name)) {
			return fmt.Errorf("wizard: parameter %q already exists", existing.Name)
		}
	}
	s.Solution.UpsertParameter(param)
	return nil
}

func (s *State) addCalculation(c *solution.Calculation) error {
	if s.Step != StepCalculations {
		return fmt.Errorf("%w: add calculation at %s", ErrWrongStep, s.Step)
	}
	if c == nil {
		return fmt.Errorf("wizard: calculation is required")
	}
	if err := solution.ValidateCalculation(*c); err != nil {
		return err
	}
	calc := *c
	if calc.ID == "" {
		calc.ID = uuid.NewString()
	}
	if calc.Category != nil && !hasCategory(s.Solution.Categories, calc.Category.Name) {
		if err := solution.ValidateCategory(*calc.Category, s.Solution.Categories); err != nil {
			return err
		}
		s.Solution.Categories = append(s.Solution.Categories, *calc.Category)
	}
	s.Solution.UpsertCalculation(calc)
	return nil
}

func (s *State) remove(step Step, id string, remove func(string) bool) error {
	if s.Step != step {
		return fmt.Errorf("%w: remove at %s", ErrWrongStep, s.Step)
	}
	if !remove(id) {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

func (s *State) submit() error {
	if s.Step != StepReview {
		return fmt.Errorf("%w: submit at %s", ErrWrongStep, s.Step)
	}
	if err := s.Solution.Validate(); err != nil {
		return err
	}
	s.Solution.Status = solution.LifecycleSubmitted
	s.Step = StepDone
	return nil
}

func hasCategory(categories []solution.Category, name string) bool {
	for _, c := range categories {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
