package ports

import "github.com/bft-labs/lectrec/pkg/log"

// Logger is the structured logger used by the application layer.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors, re-exported so callers need only import ports.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Hash     = log.Hash
	Stringer = log.Stringer
	Err      = log.Err
	Any      = log.Any
)
