package spindle

// Version is the spindle release version, surfaced by the CLI and banner.
const Version = "0.3.0"
