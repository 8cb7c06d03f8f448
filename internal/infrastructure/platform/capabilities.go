package platform

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/fleetpool/fleetdesk/internal/core/domain"
)

// decodeCapabilities reads {"role": "...", "capabilities": {name: bool}}.
// encoding/json would lose the object's key order, so the capabilities are
// walked with gjson in document order.
func decodeCapabilities(body []byte) (domain.CapabilityMap, error) {
	if !gjson.ValidBytes(body) {
		return domain.CapabilityMap{}, fmt.Errorf("platform: capabilities: invalid json")
	}
	doc := gjson.ParseBytes(body)
	caps := doc.Get("capabilities")
	if caps.Exists() && !caps.IsObject() {
		return domain.CapabilityMap{}, fmt.Errorf("platform: capabilities: expected an object, got %s", caps.Type)
	}

	out := domain.CapabilityMap{Role: doc.Get("role").String()}
	caps.ForEach(func(key, value gjson.Result) bool {
		out.Capabilities = append(out.Capabilities, domain.Capability{
			Name:    key.String(),
			Allowed: value.Bool(),
		})
		return true
	})
	return out, nil
}
