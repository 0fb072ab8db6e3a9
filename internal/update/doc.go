package update

// Package update owns the update session state machine. It composes the
// version resolver, the download pipeline, and the version store into the
// seven observable states consumed by the presentation layer, and owns retry
// and dismissal semantics.
