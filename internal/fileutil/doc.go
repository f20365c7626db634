// Package fileutil holds the small filesystem primitives the artifact adapters
// share: existence checks, create-only writes, and atomic replace-by-rename.
package fileutil
