// internal/nodeid/address.go
package nodeid

// String serializes the Address into its canonical string representation.
func (a Address) String() string {
	if !a.HasQualifier() {
		return a.Verb
	}
	return a.Verb + ":" + a.Qualifier
}
