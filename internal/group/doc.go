// Package group models the organizational units that run meetings and the
// semesters they run them in.
//
// Groups are selected by name through a Registry of factories populated at
// process start. Each Group decides where its semester directories live and
// how meeting slugs and hosted-kernel identities are derived, so the rest of
// the engine never special-cases a group by name.
package group
