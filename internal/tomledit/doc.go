// Package tomledit edits TOML documents without disturbing their formatting.
//
// A Document keeps the original bytes next to a span-annotated parse tree.
// Edits are expressed as byte-range replacements computed from the tree, so
// every byte outside an edited range survives serialization unchanged.
// After each edit the text is parsed again and checked with a strict TOML
// decoder; an edit that would leave the document invalid is rejected.
package tomledit
