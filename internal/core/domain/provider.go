package domain

// Provider identifies an external reservation system.
type Provider string

const (
	ProviderTableCheck Provider = "tablecheck"
	ProviderOpenTable  Provider = "opentable"
	ProviderSevenRooms Provider = "sevenrooms"
	ProviderChope      Provider = "chope"
	ProviderGrab       Provider = "grab"
	ProviderResy       Provider = "resy"
)

// SupportedProviders lists every provider the service can talk to.
func SupportedProviders() []Provider {
	return []Provider{
		ProviderTableCheck,
		ProviderOpenTable,
		ProviderSevenRooms,
		ProviderChope,
		ProviderGrab,
		ProviderResy,
	}
}

// IsValid returns true if p is a supported provider.
func (p Provider) IsValid() bool {
	for _, s := range SupportedProviders() {
		if p == s {
			return true
		}
	}
	return false
}
