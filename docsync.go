// Package docsync provides a local, CLI-based documentation manager.
// It fetches a remote documentation manifest, downloads markdown content,
// diffs it against a committed local store and stages the result as a
// pending change set that can be committed or discarded.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, fs/, htmltomarkdown/).
package docsync
