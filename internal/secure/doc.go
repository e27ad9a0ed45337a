// Package secure provides the byte-level security primitives of the
// authentication core: constant-time credential comparison and
// cryptographically random session identifiers.
//
// # What this package must NOT do
//
//   - Branch on secret-dependent data.
//   - Be imported outside the kanri module.
package secure
