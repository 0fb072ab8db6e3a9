package model

// Package model defines the domain data shared across the app: the update
// session state union, its phase enum, and the closed error taxonomy used by
// both the version resolver and the download pipeline. Structures are designed
// for direct rendering in consumers and explicit state transitions.
