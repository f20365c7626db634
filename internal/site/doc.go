// Package site publishes meetings to the group's public site checkout.
//
// The Exporter renders each meeting notebook to a Markdown post with YAML
// front matter under <site>/<posts dir>/<group>/<semester>/<slug>.md. Posts
// are create-or-update: identical content is left alone. When commits are
// enabled, changed posts are committed to the site repository with go-git.
// The Registrar creates a semester's index page during bootstrap.
package site
