// Package core provides shared types and the manifest handler system.
package core

// PackageData is the normalized record extracted from a package manifest.
type PackageData struct {
	Ecosystem             string             `json:"ecosystem"`
	Name                  string             `json:"name,omitempty"`
	Version               string             `json:"version,omitempty"`
	HomepageURL           string             `json:"homepage_url,omitempty"`
	DownloadURL           string             `json:"download_url,omitempty"`
	VCSURL                string             `json:"vcs_url,omitempty"`
	BugTrackingURL        string             `json:"bug_tracking_url,omitempty"`
	RepositoryHomepageURL string             `json:"repository_homepage_url,omitempty"`
	DeclaredLicense       string             `json:"declared_license,omitempty"`
	Description           string             `json:"description,omitempty"`
	Sha1                  string             `json:"sha1,omitempty"`
	Md5                   string             `json:"md5,omitempty"`
	Sha256                string             `json:"sha256,omitempty"`
	Sha512                string             `json:"sha512,omitempty"`
	PURL                  string             `json:"purl,omitempty"`
	Parties               []Party            `json:"parties,omitempty"`
	Dependencies          []DependentPackage `json:"dependencies,omitempty"`
}

// PartyType identifies the kind of party associated with a package.
type PartyType string

const (
	PartyPerson       PartyType = "person"
	PartyOrganization PartyType = "organization"
)

// Party is a person or organization associated with a package.
// Authors carry a Name; maintainers are recorded as an email identity only.
type Party struct {
	Type  PartyType `json:"type"`
	Role  string    `json:"role"`
	Name  string    `json:"name,omitempty"`
	Email string    `json:"email,omitempty"`
}

// DependentPackage is one declared dependency of a package. Requirement
// holds the raw version/constraint expression from the manifest; the purl
// identifies the package by type and name only.
type DependentPackage struct {
	PURL        string `json:"purl"`
	Requirement string `json:"requirement,omitempty"`
	Scope       Scope  `json:"scope"`
	IsRuntime   bool   `json:"is_runtime"`
	IsOptional  bool   `json:"is_optional"`
	IsResolved  bool   `json:"is_resolved"`
}

// Scope indicates when a dependency is required.
// Aligns with github.com/git-pkgs/registries core.Scope.
type Scope string

const (
	Dependency  Scope = "dependency"
	Runtime     Scope = "runtime"
	Development Scope = "development"
	Test        Scope = "test"
	Build       Scope = "build"
	Optional    Scope = "optional"
)
