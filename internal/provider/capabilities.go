package provider

import (
	"fmt"
)

// Capabilities describes what a source can do
type Capabilities struct {
	TitleSearch  bool // free-text title search
	Discovery    bool // listing without a query, filtered server side
	RequiresAuth bool // needs an API key
	Priority     int  // default priority (higher = preferred)
}

// ValidateCapabilities checks if source capabilities are valid and consistent
func ValidateCapabilities(caps Capabilities) error {
	if !caps.TitleSearch && !caps.Discovery {
		return fmt.Errorf("source must support title search or discovery")
	}

	return nil
}
