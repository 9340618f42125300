// internal/nodeid/types.go
package nodeid

// Address is the structured representation of a task identifier.
type Address struct {
	// Verb is the action, e.g. `build` or `clean`.
	Verb string
	// Qualifier narrows the verb, usually to one asset category. Empty for
	// umbrella tasks.
	Qualifier string
}

// New creates an address from its parts.
func New(verb, qualifier string) Address {
	return Address{Verb: verb, Qualifier: qualifier}
}

// HasQualifier returns true if the address names a specific qualifier.
func (a Address) HasQualifier() bool {
	return a.Qualifier != ""
}
