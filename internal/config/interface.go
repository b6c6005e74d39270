package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
)

// Loader is the interface for a format-specific sweep file loader.
type Loader interface {
	// Load reads every sweep file found under the given paths and returns the
	// merged model with a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)

	// LoadBytes parses a single in-memory sweep file.
	LoadBytes(ctx context.Context, filename string, src []byte) (*Model, Converter, error)
}

// Converter decodes raw plugin bodies into the input structs that submitter
// and notifier modules declare.
type Converter interface {
	DecodeBody(ctx context.Context, body hcl.Body, target any) error
}
