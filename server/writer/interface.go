package writer

import (
	"context"

	"github.com/gear6io/glacier/server/shared"
	"github.com/gear6io/glacier/server/types"
)

// Writer persists a collected entry list to a backup destination. Entries
// are written in the order given; paths are archive paths produced by the
// collector, rooted at "/".
type Writer interface {
	shared.Component

	// Write persists all entries. The first failure aborts the run.
	Write(ctx context.Context, entries []types.Entry) error
}
