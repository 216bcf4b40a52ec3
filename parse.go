package coverpick

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseModelJSON strips optional markdown fences around a model reply and
// decodes it into dest. Any failure wraps ErrUpstreamParse.
func parseModelJSON(reply string, dest any) error {
	body := stripFences(reply)
	if body == "" {
		return fmt.Errorf("%w: empty reply", ErrUpstreamParse)
	}
	if err := json.Unmarshal([]byte(body), dest); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamParse, err)
	}
	return nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
