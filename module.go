package modgraph

import "fmt"

// ContextValue is the request-scoped value handed to every resolver. Each
// module contributes top level keys to it.
type ContextValue map[string]any

// ContextFunc builds a module's share of the ContextValue from the context
// argument of a request (for example an *http.Request).
type ContextFunc func(arg any) (ContextValue, error)

// Module is one bounded feature area: an SDL fragment, the resolvers backing
// it and a context builder. Every field is optional; the zero Module
// contributes nothing.
type Module struct {
	// Name labels the module's schema fragment in schema errors. It defaults
	// to "module[i]" where i is the module's position.
	Name      string
	Schema    string
	Resolvers Resolvers
	Context   ContextFunc
}

// Bundle is the composition of a list of modules. It is not modified after
// Compile returns.
type Bundle struct {
	// TypeDefs holds the non-empty schema fragments in module order.
	TypeDefs []string
	// Resolvers is the deep merge of every module's resolver tree.
	Resolvers Resolvers

	sourceNames []string
	contexts    []ContextFunc
}

// Compile merges modules into a Bundle. Schema fragments keep their order,
// resolver trees are deep merged with later modules winning on conflicting
// leaves, and context functions are collected for GetContext. The modules
// themselves are not modified.
func Compile(modules ...Module) *Bundle {
	b := &Bundle{TypeDefs: []string{}, Resolvers: Resolvers{}}
	for i, m := range modules {
		if m.Schema != "" {
			name := m.Name
			if name == "" {
				name = fmt.Sprintf("module[%d]", i)
			}
			b.TypeDefs = append(b.TypeDefs, m.Schema)
			b.sourceNames = append(b.sourceNames, name)
		}
		if m.Resolvers != nil {
			b.Resolvers = mergeResolvers(b.Resolvers, m.Resolvers)
		}
		if m.Context != nil {
			b.contexts = append(b.contexts, m.Context)
		}
	}
	return b
}

// GetContext calls every module's context function with arg, in module order,
// and shallow merges the results: a top level key set by a later module
// replaces the one set by an earlier module. A nil result contributes nothing.
//
// The first error returned by a context function is returned as is and the
// remaining functions are not called.
func (b *Bundle) GetContext(arg any) (ContextValue, error) {
	values := make([]ContextValue, 0, len(b.contexts))
	for _, fn := range b.contexts {
		v, err := fn(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return shallowMerge(values...), nil
}

// sourceName returns the name used for the i-th type definition.
func (b *Bundle) sourceName(i int) string {
	if i < len(b.sourceNames) {
		return b.sourceNames[i]
	}
	return fmt.Sprintf("typeDefs[%d]", i)
}

func shallowMerge(values ...ContextValue) ContextValue {
	out := ContextValue{}
	for _, v := range values {
		for k, val := range v {
			out[k] = val
		}
	}
	return out
}
