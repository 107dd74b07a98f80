package css

import "strings"

// maxVarDepth bounds var() recursion.
const maxVarDepth = 32

// CustomProperties is an immutable snapshot of the custom properties
// (--name: value) visible at one element. Snapshots are shared between a
// parent and its children until a child declares something of its own.
type CustomProperties struct {
	values map[string]string
}

var emptyCustomProperties = &CustomProperties{}

// MergeCustomProperties returns inherited unchanged when nothing is declared,
// otherwise a new snapshot with the declared names overwriting inherited ones.
func MergeCustomProperties(inherited *CustomProperties, declared map[string]string) *CustomProperties {
	if inherited == nil {
		inherited = emptyCustomProperties
	}
	if len(declared) == 0 {
		return inherited
	}
	values := make(map[string]string, len(inherited.values)+len(declared))
	for k, v := range inherited.values {
		values[k] = v
	}
	for k, v := range declared {
		values[strings.ToLower(k)] = v
	}
	return &CustomProperties{values: values}
}

// Get looks up a custom property; the name is case-insensitive.
func (c *CustomProperties) Get(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.values[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Len reports how many custom properties are visible.
func (c *CustomProperties) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// ResolveVars substitutes every var() reference in input. It reports false
// when a reference can be resolved neither through the map nor a fallback;
// the caller then drops the declaration.
func (c *CustomProperties) ResolveVars(input string) (string, bool) {
	if indexVar(input) < 0 {
		return input, true
	}
	var stack []string
	return c.resolve(input, &stack, 0)
}

func (c *CustomProperties) resolve(input string, stack *[]string, depth int) (string, bool) {
	if depth > maxVarDepth {
		return "", false
	}
	if indexVar(input) < 0 {
		return input, true
	}
	var out strings.Builder
	rest := input
	for {
		idx := indexVar(rest)
		if idx < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:idx])
		args, after, ok := splitBalancedParens(rest[idx+len("var("):])
		if !ok {
			return "", false
		}
		value, ok := c.resolveReference(args, stack, depth)
		if !ok {
			return "", false
		}
		out.WriteString(value)
		rest = after
	}
	return out.String(), true
}

func (c *CustomProperties) resolveReference(args string, stack *[]string, depth int) (string, bool) {
	name, fallback, hasFallback := splitVarArguments(args)
	useFallback := func() (string, bool) {
		if !hasFallback {
			return "", false
		}
		return c.resolve(fallback, stack, depth+1)
	}
	if !strings.HasPrefix(name, "--") {
		return useFallback()
	}
	name = strings.ToLower(name)
	for _, active := range *stack {
		if active == name {
			return useFallback()
		}
	}
	raw, found := c.Get(name)
	if !found {
		return useFallback()
	}
	*stack = append(*stack, name)
	resolved, ok := c.resolve(raw, stack, depth+1)
	*stack = (*stack)[:len(*stack)-1]
	if !ok {
		return useFallback()
	}
	return resolved, true
}

// indexVar finds "var(" ignoring ASCII case.
func indexVar(s string) int {
	for i := 0; i+4 <= len(s); i++ {
		if s[i]|0x20 == 'v' && s[i+1]|0x20 == 'a' && s[i+2]|0x20 == 'r' && s[i+3] == '(' {
			return i
		}
	}
	return -1
}

// splitBalancedParens takes the text after an opening paren and returns
// the enclosed arguments and the remainder after the matching close paren.
func splitBalancedParens(s string) (inside, after string, ok bool) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return "", "", false
}

// splitVarArguments splits "name, fallback" on the first top-level comma.
func splitVarArguments(args string) (name, fallback string, hasFallback bool) {
	depth := 0
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				fallback = strings.TrimSpace(args[i+1:])
				return strings.TrimSpace(args[:i]), fallback, fallback != ""
			}
		}
	}
	return strings.TrimSpace(args), "", false
}
