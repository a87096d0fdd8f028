// Package manifests extracts normalized package metadata from package-manager
// manifest files.
//
// Each supported ecosystem registers a handler that recognizes its manifest
// files by name and parses them into a normalized PackageData record with
// name, URLs, checksums, license, description, parties, and dependencies.
//
// Basic usage:
//
//	import (
//		"github.com/git-pkgs/manifests"
//		_ "github.com/git-pkgs/manifests/internal/opam"
//	)
//
//	pkg, err := manifests.ParseFile("ocaml.opam")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(pkg.Name, pkg.HomepageURL)
//
// To automatically import all supported ecosystems, use the imports subpackage:
//
//	import (
//		"github.com/git-pkgs/manifests"
//		_ "github.com/git-pkgs/manifests/all"
//	)
package manifests

import (
	"github.com/git-pkgs/purl"

	"github.com/git-pkgs/manifests/internal/core"
)

// Re-export types from internal/core
type (
	// Handler is the interface implemented by all ecosystem manifest handlers.
	Handler = core.Handler

	// PackageData is the normalized record extracted from a manifest.
	PackageData = core.PackageData

	// Party is a person or organization associated with a package.
	Party = core.Party

	// PartyType identifies the kind of party.
	PartyType = core.PartyType

	// DependentPackage is one declared dependency of a package.
	DependentPackage = core.DependentPackage

	// Scope indicates when a dependency is required.
	Scope = core.Scope

	// URLBuilder constructs well-known URLs for an ecosystem's packages.
	URLBuilder = core.URLBuilder
)

// Re-export constants
const (
	PartyPerson       = core.PartyPerson
	PartyOrganization = core.PartyOrganization

	Dependency  = core.Dependency
	Runtime     = core.Runtime
	Development = core.Development
	Test        = core.Test
	Build       = core.Build
	Optional    = core.Optional
)

// Re-export errors
var (
	ErrNotApplicable = core.ErrNotApplicable
)

// Error types
type (
	ParseError = core.ParseError
)

// New creates a handler for the given ecosystem.
//
// Supported ecosystems: "opam"
func New(ecosystem string) (Handler, error) {
	return core.New(ecosystem)
}

// SupportedEcosystems returns all registered ecosystem types.
// Note: ecosystems must be imported to be registered.
func SupportedEcosystems() []string {
	return core.SupportedEcosystems()
}

// HandlerFor returns the handler that recognizes the file at path, or nil
// when no registered handler matches.
func HandlerFor(path string) Handler {
	return core.HandlerFor(path)
}

// ParseFile parses the manifest at path with the handler that recognizes it.
// Returns ErrNotApplicable when no handler matches.
func ParseFile(path string) (*PackageData, error) {
	h := core.HandlerFor(path)
	if h == nil {
		return nil, ErrNotApplicable
	}
	return h.Parse(path)
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "registry", "download", "docs", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return core.BuildURLs(urls, name, version)
}

// PURL represents a parsed Package URL.
type PURL = purl.PURL

// ParsePURL parses a Package URL string into its components.
// Supports both package PURLs (pkg:opam/ocaml) and version PURLs
// (pkg:opam/ocaml@4.14.0).
func ParsePURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}
