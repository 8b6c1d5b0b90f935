package executor

import (
	language "github.com/hanpama/modgraph/internal/language"
	schema "github.com/hanpama/modgraph/internal/schema"
)

// fieldGroup is every selection of one response name within a selection
// set, in document order.
type fieldGroup struct {
	responseName string
	fields       []*language.Field
}

func (g fieldGroup) name() string { return g.fields[0].Name }

func (g fieldGroup) definition(objectType *schema.Type) *schema.Field {
	return objectType.Field(g.name())
}

// subselection merges the selection sets of every field in the group.
func (g fieldGroup) subselection() language.SelectionSet {
	if len(g.fields) == 1 {
		return g.fields[0].SelectionSet
	}
	var merged language.SelectionSet
	for _, f := range g.fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// collectFields groups the fields selected on objectType by response name,
// following fragments whose type condition applies and honoring @skip and
// @include. Groups keep the order in which their first field appears.
func (s *executionState) collectFields(objectType *schema.Type, selections language.SelectionSet) []fieldGroup {
	c := fieldCollector{state: s, objectType: objectType, index: map[string]int{}, visited: map[string]bool{}}
	c.collect(selections)
	return c.groups
}

type fieldCollector struct {
	state      *executionState
	objectType *schema.Type
	groups     []fieldGroup
	index      map[string]int
	visited    map[string]bool
}

func (c *fieldCollector) collect(selections language.SelectionSet) {
	for _, selection := range selections {
		switch sel := selection.(type) {
		case *language.Field:
			if c.state.included(sel.Directives) {
				c.add(sel)
			}
		case *language.InlineFragment:
			if c.state.included(sel.Directives) && c.applies(sel.TypeCondition) {
				c.collect(sel.SelectionSet)
			}
		case *language.FragmentSpread:
			if !c.state.included(sel.Directives) || c.visited[sel.Name] {
				continue
			}
			c.visited[sel.Name] = true
			def := c.state.document.Fragments.ForName(sel.Name)
			if def == nil || !c.applies(def.TypeCondition) || !c.state.included(def.Directives) {
				continue
			}
			c.collect(def.SelectionSet)
		}
	}
}

func (c *fieldCollector) add(f *language.Field) {
	name := f.Alias
	if name == "" {
		name = f.Name
	}
	if i, ok := c.index[name]; ok {
		c.groups[i].fields = append(c.groups[i].fields, f)
		return
	}
	c.index[name] = len(c.groups)
	c.groups = append(c.groups, fieldGroup{responseName: name, fields: []*language.Field{f}})
}

// applies reports whether a fragment with the given type condition applies
// to the collected object type: the condition names the object itself, an
// interface it implements or a union containing it.
func (c *fieldCollector) applies(typeCondition string) bool {
	if typeCondition == "" || typeCondition == c.objectType.Name {
		return true
	}
	return c.state.schema.IsPossibleType(typeCondition, c.objectType.Name)
}

// included evaluates @skip and @include. A missing or non-boolean "if"
// argument leaves the selection in.
func (s *executionState) included(directives language.DirectiveList) bool {
	if skip, ok := s.directiveCondition(directives, "skip"); ok && skip {
		return false
	}
	if include, ok := s.directiveCondition(directives, "include"); ok && !include {
		return false
	}
	return true
}

func (s *executionState) directiveCondition(directives language.DirectiveList, name string) (bool, bool) {
	d := directives.ForName(name)
	if d == nil {
		return false, false
	}
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v, ok := valueFromASTWithVars(arg.Value, s.variables).(bool)
	return v, ok
}
