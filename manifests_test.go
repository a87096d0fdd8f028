package manifests_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/git-pkgs/manifests"
	_ "github.com/git-pkgs/manifests/all"
)

func TestSupportedEcosystems(t *testing.T) {
	ecosystems := manifests.SupportedEcosystems()

	found := false
	for _, eco := range ecosystems {
		if eco == "opam" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected opam to be registered, got %v", ecosystems)
	}
}

func TestNew(t *testing.T) {
	h, err := manifests.New("opam")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if h.Ecosystem() != "opam" {
		t.Errorf("ecosystem = %q, want %q", h.Ecosystem(), "opam")
	}

	if _, err := manifests.New("nonexistent"); err == nil {
		t.Error("expected an error for an unknown ecosystem")
	}
}

func TestHandlerFor(t *testing.T) {
	if h := manifests.HandlerFor("ocaml.opam"); h == nil || h.Ecosystem() != "opam" {
		t.Errorf("expected the opam handler, got %v", h)
	}
	if h := manifests.HandlerFor("go.mod"); h != nil {
		t.Errorf("expected no handler, got %q", h.Ecosystem())
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.opam")
	content := `name: "foo"
version: "1.0"
synopsis: "A test package"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	pkg, err := manifests.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if pkg.Name != "foo" {
		t.Errorf("name = %q, want %q", pkg.Name, "foo")
	}
	if pkg.Version != "1.0" {
		t.Errorf("version = %q, want %q", pkg.Version, "1.0")
	}
	if pkg.Description != "A test package" {
		t.Errorf("description = %q", pkg.Description)
	}
}

func TestParseFileNotApplicable(t *testing.T) {
	_, err := manifests.ParseFile("README.md")
	if !errors.Is(err, manifests.ErrNotApplicable) {
		t.Fatalf("expected ErrNotApplicable, got %v", err)
	}
}

func TestParsePURL(t *testing.T) {
	p, err := manifests.ParsePURL("pkg:opam/ocaml@4.14.0")
	if err != nil {
		t.Fatalf("ParsePURL failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected a parsed purl, got nil")
	}

	if _, err := manifests.ParsePURL("opam/ocaml"); err == nil {
		t.Error("expected an error for a string without the pkg: prefix")
	}
}

func TestBuildURLs(t *testing.T) {
	h, err := manifests.New("opam")
	if err != nil {
		t.Fatal(err)
	}

	urls := manifests.BuildURLs(h.URLs(), "ocaml", "4.14.0")

	if urls["registry"] != "https://opam.ocaml.org/packages/ocaml/ocaml.4.14.0" {
		t.Errorf("registry = %q", urls["registry"])
	}
	if urls["purl"] != "pkg:opam/ocaml@4.14.0" {
		t.Errorf("purl = %q", urls["purl"])
	}
	if _, ok := urls["download"]; ok {
		t.Error("opam has no stable download URL; key should be omitted")
	}
}
