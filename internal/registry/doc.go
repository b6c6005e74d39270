// Package registry provides the glue between sweep files and compiled Go
// modules.
//
// A sweep file names its submitter and notifiers by type label, e.g.
// `submitter "multihost" { ... }`. Modules register a constructor for each
// label; the registry decodes the block body into the module's input struct
// and builds the submitter or notifier from it.
package registry
