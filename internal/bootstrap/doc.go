// Package bootstrap materializes the skeleton of a new semester: the
// templated env.yml, the static overhead.yml, an empty syllabus, and the
// semester's landing page on the site.
//
// Bootstrapping an existing semester root overwrites its configuration
// files, so Run asks the injected Confirmer first. A declined confirmation
// returns services.ErrDeclined and leaves the filesystem untouched.
package bootstrap
