// Package workspace locates the root of a Cargo workspace and lists the
// manifests of its members, either by expanding the member globs itself or
// by asking `cargo metadata`.
package workspace
