// Package common holds shared constants for the STAR services.
package common

// PackageName identifies this module in metrics and logs.
const PackageName = "sta-rs"

// Version is set at build time via -ldflags.
var Version = "dev"
