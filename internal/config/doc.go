// Package config defines the format-agnostic model of a sweep file, along
// with the Loader and Converter interfaces that concrete formats implement.
//
// The Model is the single source of truth for the app package: it names the
// sweeps, their axes and command templates, and the raw plugin bodies that
// the registry decodes into submitters and notifiers. The HCL implementation
// lives in the hcl package.
package config
