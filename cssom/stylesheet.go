package cssom

// StyleSheet is an interface to abstract away a stylesheet-implementation.
// Clients may provide a concrete implementation of this interface (e.g., see
// package douceuradapter).
//
// See interface Rule.
type StyleSheet interface {
	AppendRules(StyleSheet) // append rules from another stylesheet
	Empty() bool            // does this stylesheet contain any rules?
	Rules() []Rule          // all the top-level rules of a stylesheet
	String() string         // CSS text of the stylesheet
}

// Rule is the type stylesheets consists of. At-rules like @media embed
// further rules.
//
// See interface StyleSheet.
type Rule interface {
	Selector() string        // the prelude / selectors of the rule
	Properties() []string    // property keys, e.g. "margin-top"
	Value(string) string     // property value for key, e.g. "15px"
	IsImportant(string) bool // is property key marked as important?
	Embedded() []Rule        // embedded rules of an at-rule
}
