// Package schema loads and validates versioned storyworld definitions.
//
// Storyworlds are authored as JSON or YAML documents. Validation happens at
// load time: gate references, operator names, and encounter/spool wiring
// are all checked up front so the runtime never has to guess what an
// unknown operator means.
package schema
