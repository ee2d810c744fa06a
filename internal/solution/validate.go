package solution

import (
	"fmt"
	"strings"

	"github.com/iwvelando/valuecalc/pkg/formula"
	"github.com/iwvelando/valuecalc/pkg/validation"
	"go.uber.org/multierr"
)

// ValidateParameter checks the fields an author must fill in before a
// parameter can be saved. Filter parameters carry no unit.
func ValidateParameter(p Parameter) error {
	label := describe("parameter", p.Name, p.ID)
	var err error
	if strings.TrimSpace(p.Name) == "" {
		err = multierr.Append(err, fmt.Errorf("%s: name is required", label))
	}
	if !p.ProvidedBy.Valid() {
		err = multierr.Append(err, fmt.Errorf("%s: provided_by must be %q or %q, got %q",
			label, ProvidedByUser, ProvidedByCompany, p.ProvidedBy))
	}
	if !p.DisplayType.Valid() {
		err = multierr.Append(err, fmt.Errorf("%s: unknown display_type %q", label, p.DisplayType))
	}
	if !p.IsFilter() && strings.TrimSpace(p.Unit) == "" {
		err = multierr.Append(err, fmt.Errorf("%s: unit is required", label))
	}
	if strings.TrimSpace(p.Category) == "" {
		err = multierr.Append(err, fmt.Errorf("%s: category is required", label))
	}
	return err
}

// ValidateCalculation checks the fields an author must fill in before a
// calculation can be saved.
func ValidateCalculation(c Calculation) error {
	label := describe("calculation", c.Name, c.ID)
	var err error
	if strings.TrimSpace(c.Name) == "" {
		err = multierr.Append(err, fmt.Errorf("%s: name is required", label))
	}
	if strings.TrimSpace(c.Formula) == "" {
		err = multierr.Append(err, fmt.Errorf("%s: formula is required", label))
	}
	if c.Category != nil && strings.TrimSpace(c.Category.Name) == "" {
		err = multierr.Append(err, fmt.Errorf("%s: category name is required", label))
	}
	return err
}

// ValidateCategory rejects a category without a name or whose name collides,
// ignoring case, with an existing category.
func ValidateCategory(candidate Category, existing []Category) error {
	name := strings.TrimSpace(candidate.Name)
	if name == "" {
		return fmt.Errorf("category name is required")
	}
	for _, c := range existing {
		if strings.EqualFold(strings.TrimSpace(c.Name), name) {
			return fmt.Errorf("category %q already exists", c.Name)
		}
	}
	return nil
}

// Validate reports every authoring problem in the solution at once.
func (s *Solution) Validate() error {
	var err error
	if strings.TrimSpace(s.Name) == "" {
		err = multierr.Append(err, fmt.Errorf("solution name is required"))
	}
	for _, p := range s.Parameters {
		err = multierr.Append(err, ValidateParameter(p))
	}
	for _, c := range s.Calculations {
		err = multierr.Append(err, ValidateCalculation(c))
	}
	for i, c := range s.Categories {
		err = multierr.Append(err, ValidateCategory(c, s.Categories[:i]))
	}
	return err
}

// Warnings returns non-fatal findings about the solution's names and
// formulas.
func (s *Solution) Warnings() []string {
	var warnings []string
	items := s.namedItems()

	for _, item := range items {
		if w := validation.ValidateToken(item); w != "" {
			warnings = append(warnings, w)
		}
	}
	warnings = append(warnings, validation.ValidateTokenCollisions(items)...)

	hasCountryFilter := false
	for _, p := range s.Parameters {
		if p.IsFilter() && isCountryFilter(p) {
			hasCountryFilter = true
		}
	}
	for _, p := range s.Parameters {
		if p.DisplayType == DisplayDropdown && len(p.DropdownOptions) == 0 {
			msg := fmt.Sprintf("Dropdown parameter '%s' has no options", p.Name)
			if !hasCountryFilter {
				msg += " and no country filter to resolve it"
			}
			warnings = append(warnings, msg)
		}
	}

	declared := make(map[string]struct{}, len(items))
	for _, item := range items {
		declared[formula.Sanitize(item.Name)] = struct{}{}
	}
	for _, p := range s.Parameters {
		if p.Formula != "" {
			warnings = append(warnings, validation.ValidateReferences(validation.NamedItem{Kind: "Parameter", Name: p.Name}, p.Formula, declared)...)
		}
	}
	for _, c := range s.Calculations {
		if c.Formula != "" {
			warnings = append(warnings, validation.ValidateReferences(validation.NamedItem{Kind: "Calculation", Name: c.Name}, c.Formula, declared)...)
		}
	}

	return warnings
}

func (s *Solution) namedItems() []validation.NamedItem {
	items := make([]validation.NamedItem, 0, len(s.Parameters)+len(s.Calculations))
	for _, p := range s.Parameters {
		items = append(items, validation.NamedItem{Kind: "Parameter", Name: p.Name})
	}
	for _, c := range s.Calculations {
		items = append(items, validation.NamedItem{Kind: "Calculation", Name: c.Name})
	}
	return items
}

func isCountryFilter(p Parameter) bool {
	return strings.Contains(strings.ToLower(p.Name), "country")
}

func describe(kind, name, id string) string {
	switch {
	case strings.TrimSpace(name) != "":
		return fmt.Sprintf("%s %q", kind, name)
	case id != "":
		return fmt.Sprintf("%s %s", kind, id)
	}
	return kind
}
