package config

import (
	"encoding/json"
	"fmt"
	"strings"

	validator "github.com/asaskevich/govalidator"
	"github.com/predictinteractive/predict-server/openrtb_ext"
)

// Adapter carries the settings a bidder Builder needs. As a host override under
// adapters.{bidder}, empty fields leave the bidder-info value untouched.
type Adapter struct {
	Endpoint         string `mapstructure:"endpoint"`
	ExtraAdapterInfo string `mapstructure:"extra_info"`
	Disabled         *bool  `mapstructure:"disabled"`
}

func normalizeAdapterKeys(adapters map[string]Adapter) map[string]Adapter {
	normalized := make(map[string]Adapter, len(adapters))
	for name, adapter := range adapters {
		normalized[strings.ToLower(name)] = adapter
	}
	return normalized
}

func validateAdapterOverrides(adapters map[string]Adapter, errs []error) []error {
	for name := range adapters {
		if _, ok := openrtb_ext.NormalizeBidderName(name); !ok {
			errs = append(errs, fmt.Errorf("adapters.%s does not match a known bidder", name))
		}
	}
	return errs
}

// validateAdapterEndpoint makes sure that an adapter has a valid endpoint associated with it.
func validateAdapterEndpoint(endpoint string, bidderName string, errs []error) []error {
	if endpoint == "" {
		return append(errs, fmt.Errorf("There's no default endpoint available for %s. Calls to this bidder will fail. "+
			"Please set adapters.%s.endpoint in your app config", bidderName, bidderName))
	}

	// IsURL allows relative paths and IsRequestURL requires an absolute one, so both are checked.
	if !validator.IsURL(endpoint) || !validator.IsRequestURL(endpoint) {
		errs = append(errs, fmt.Errorf("The endpoint: %s for %s is not a valid URL", endpoint, bidderName))
	}
	return errs
}

func validateExtraAdapterInfo(extraInfo string, bidderName string, errs []error) []error {
	if extraInfo != "" && !json.Valid([]byte(extraInfo)) {
		errs = append(errs, fmt.Errorf("The extra_info for %s is not valid JSON: %s", bidderName, extraInfo))
	}
	return errs
}
