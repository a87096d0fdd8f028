package core

// URLBuilder constructs well-known URLs for an ecosystem's packages.
type URLBuilder interface {
	Registry(name, version string) string
	Download(name, version string) string
	Documentation(name, version string) string
	PURL(name, version string) string
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "download", "docs", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Registry(name, version); v != "" {
		result["registry"] = v
	}
	if v := urls.Download(name, version); v != "" {
		result["download"] = v
	}
	if v := urls.Documentation(name, version); v != "" {
		result["docs"] = v
	}
	if v := urls.PURL(name, version); v != "" {
		result["purl"] = v
	}
	return result
}
