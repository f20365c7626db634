// Package textutil turns free-form meeting names into slugs, titles and
// filesystem-safe tokens.
//
// Slugs are ASCII-folded, lowercased and hyphen-separated so they can be
// used as directory names, kernel identifiers and URL segments alike.
package textutil
