// Package all registers all supported ecosystem handlers.
//
// Import for side effects:
//
//	import _ "github.com/git-pkgs/manifests/all"
package all

import (
	_ "github.com/git-pkgs/manifests/internal/opam"
)
