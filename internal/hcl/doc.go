// Package hcl provides the HCL implementation of the config Loader and
// Converter interfaces. It parses sweep files, evaluates axis expressions
// against an evaluation context exposing `env` and a small function library,
// and translates the result into the format-agnostic config.Model.
package hcl
