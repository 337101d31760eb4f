package glog

// Modifier is one signed numeric contribution to an in-flight action, with
// human-readable provenance. Modifiers are ephemeral: they live for a
// single action invocation and never get persisted. Zero-value modifiers
// are never recorded anywhere.
type Modifier struct {
	Source    string   `json:"source"`
	Category  string   `json:"category"`
	Value     int      `json:"value"`
	Reason    string   `json:"reason"`
	AppliesTo []string `json:"appliesTo,omitempty"`
}
