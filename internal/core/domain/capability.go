package domain

// Capability is one named permission and whether the role holds it.
type Capability struct {
	Name    string `json:"name"`
	Allowed bool   `json:"allowed"`
}

// CapabilityMap is the role-scoped permission mapping served by the
// platform. Capabilities keep the order of the platform's JSON object.
type CapabilityMap struct {
	Role         string       `json:"role"`
	Capabilities []Capability `json:"capabilities"`
}

// Allowed reports whether the named capability is present and granted.
func (m CapabilityMap) Allowed(name string) bool {
	for _, c := range m.Capabilities {
		if c.Name == name {
			return c.Allowed
		}
	}
	return false
}
