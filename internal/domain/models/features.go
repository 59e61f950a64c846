// internal/domain/models/features.go
package models

import "sort"

// Features is an organization's named boolean flags.
type Features map[string]bool

// Known feature flags and their defaults for new organizations.
const (
	FeatureExportCSV    = "export_csv"
	FeatureExportExcel  = "export_excel"
	FeatureExportPDF    = "export_pdf"
	FeatureCompanies    = "companies"
	FeatureOfflineSync  = "offline_sync"
	FeatureLiquidations = "liquidations"
	FeatureMultiVehicle = "multi_vehicle"
)

var featureDefaults = Features{
	FeatureExportCSV:    true,
	FeatureExportExcel:  true,
	FeatureExportPDF:    true,
	FeatureCompanies:    true,
	FeatureOfflineSync:  true,
	FeatureLiquidations: true,
	FeatureMultiVehicle: false,
}

// DefaultFeatures returns a fresh copy of the default flag map.
func DefaultFeatures() Features {
	out := make(Features, len(featureDefaults))
	for k, v := range featureDefaults {
		out[k] = v
	}
	return out
}

// IsKnownFeature reports whether key names a supported flag.
func IsKnownFeature(key string) bool {
	_, ok := featureDefaults[key]
	return ok
}

// KnownFeatures lists the supported flag keys in sorted order.
func KnownFeatures() []string {
	keys := make([]string, 0, len(featureDefaults))
	for k := range featureDefaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Enabled reports whether the flag is on. Unknown or unset flags fall back
// to their default.
func (f Features) Enabled(key string) bool {
	if v, ok := f[key]; ok {
		return v
	}
	return featureDefaults[key]
}
