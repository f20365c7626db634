// Package preflight provides readiness checks for the directories and
// external services autobot depends on.
//
// These checks run in two contexts:
//   - upkeep runs Local before taking any action on a semester. A failing
//     check halts the run before a single artifact is touched.
//   - The CLI "autobot doctor" command runs RunAll, which adds the
//     authenticated kernel host check, and renders every Result.
//
// Each check is gated by its config toggle; disabled features pass with a
// "Disabled" detail.
package preflight
