package flux

import "github.com/xraph/flux/id"

// ID is the identifier type for flux entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
