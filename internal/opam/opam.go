// Package opam extracts package metadata from OCaml opam manifest files.
package opam

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	packageurl "github.com/package-url/packageurl-go"

	"github.com/git-pkgs/manifests/internal/core"
)

const (
	ecosystem  = "opam"
	webBaseURL = "https://opam.ocaml.org/packages"
)

func init() {
	core.Register(ecosystem, func() core.Handler {
		return New()
	})
}

// Handler parses opam manifests into normalized package data.
type Handler struct {
	urls *URLs
}

func New() *Handler {
	return &Handler{urls: &URLs{}}
}

func (h *Handler) Ecosystem() string {
	return ecosystem
}

// Match reports whether path names an opam manifest. Recognition is a
// trailing-string match on the base name.
func (h *Handler) Match(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "opam")
}

func (h *Handler) URLs() core.URLBuilder {
	return h.urls
}

// Parse reads the manifest at path and returns the normalized package data.
// It returns core.ErrNotApplicable when the file name does not match, and a
// *core.ParseError wrapping the underlying error when the file cannot be
// read. Unrecognized or malformed lines inside the manifest are tolerated
// silently.
func (h *Handler) Parse(path string) (*core.PackageData, error) {
	if !h.Match(path) {
		return nil, core.ErrNotApplicable
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.ParseError{Ecosystem: ecosystem, Path: path, Err: err}
	}

	fields := parseLines(strings.Split(string(data), "\n"))
	return buildPackage(fields), nil
}

// buildPackage maps the parsed fields onto the normalized record. Absent
// keys map to zero values; nothing here can fail.
func buildPackage(fields *fieldMap) *core.PackageData {
	name := fields.scalar("name")
	version := fields.scalar("version")

	description := fields.scalar("description")
	// A synopsis always wins when present, even over a longer description.
	if summary := fields.scalar("synopsis"); summary != "" {
		description = summary
	}

	var parties []core.Party
	for _, author := range fields.list("authors") {
		parties = append(parties, core.Party{
			Type: core.PartyPerson,
			Role: "author",
			Name: author,
		})
	}
	for _, maintainer := range fields.list("maintainer") {
		parties = append(parties, core.Party{
			Type:  core.PartyPerson,
			Role:  "maintainer",
			Email: maintainer,
		})
	}

	var dependencies []core.DependentPackage
	for _, ref := range fields.dependencies("depends") {
		dependencies = append(dependencies, core.DependentPackage{
			PURL:        ref.purl(),
			Requirement: ref.version,
			Scope:       core.Dependency,
			IsRuntime:   true,
			IsOptional:  false,
			IsResolved:  false,
		})
	}

	pkg := &core.PackageData{
		Ecosystem:       ecosystem,
		Name:            name,
		Version:         version,
		HomepageURL:     fields.scalar("homepage"),
		DownloadURL:     fields.scalar("src"),
		VCSURL:          fields.scalar("dev-repo"),
		BugTrackingURL:  fields.scalar("bug-reports"),
		DeclaredLicense: fields.scalar("license"),
		Description:     description,
		Sha1:            fields.scalar("sha1"),
		Md5:             fields.scalar("md5"),
		Sha256:          fields.scalar("sha256"),
		Sha512:          fields.scalar("sha512"),
		Parties:         parties,
		Dependencies:    dependencies,
	}

	if name != "" {
		pkg.RepositoryHomepageURL = fmt.Sprintf("%s/%s", webBaseURL, name)
		pkg.PURL = packageurl.NewPackageURL(ecosystem, "", name, version, nil, "").ToString()
	}

	return pkg
}

// purl identifies the dependency by type and name only; the version
// constraint is not part of the identifier.
func (r dependencyRef) purl() string {
	return packageurl.NewPackageURL(ecosystem, "", r.name, "", nil, "").ToString()
}

// URLs builds well-known URLs for packages published on opam.ocaml.org.
type URLs struct{}

func (u *URLs) Registry(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/%s/%s.%s", webBaseURL, name, name, version)
	}
	return fmt.Sprintf("%s/%s", webBaseURL, name)
}

func (u *URLs) Download(name, version string) string {
	// Archives live at upstream-declared src URLs, there is no stable
	// registry download location.
	return ""
}

func (u *URLs) Documentation(name, version string) string {
	return fmt.Sprintf("https://ocaml.org/p/%s", name)
}

func (u *URLs) PURL(name, version string) string {
	if version != "" {
		return fmt.Sprintf("pkg:opam/%s@%s", name, version)
	}
	return fmt.Sprintf("pkg:opam/%s", name)
}
