package resque

import "github.com/xraph/resque/id"

// ID is the identifier type for jobs and failure records.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
