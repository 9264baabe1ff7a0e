// Package project loads and validates tessera project files.
//
// A project file is YAML describing the collection (name, size, master
// seed, composite dimensions), the trait-class library in declaration
// order, and the constraint rules. Files are validated against an
// embedded CUE schema before use, plus semantic checks CUE cannot
// express (duplicate identifiers, dangling rule references).
//
// The declaration order of classes, traits, and rules in the file is
// semantically significant and is preserved through loading.
package project
