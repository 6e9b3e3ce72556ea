// Package runner drives a simulation from start to completion on behalf of
// host surfaces (CLI, tests). It supplies ready-made deciders (scripted,
// random, interactive) and, when a run tracker is configured, records
// params, per-frame metrics, and final session outcomes for downstream
// analysis.
package runner
