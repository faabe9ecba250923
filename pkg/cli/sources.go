package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pcbshop/boardopts/pkg/store"
)

func isEmbedded(uri string) bool {
	return uri == "" || uri == store.SourceEmbedded
}

func isConfigMap(uri string) bool {
	return strings.HasPrefix(uri, store.ConfigMapURIScheme)
}

// openWritableStore opens uri for commands that add snapshots. A snapshot
// file that does not exist yet starts out empty and is created on write.
func openWritableStore(ctx context.Context, uri string) (store.Store, error) {
	switch {
	case isEmbedded(uri):
		return nil, fmt.Errorf("the embedded snapshots are read-only, use --source FILE or --source %sNAMESPACE",
			store.ConfigMapURIScheme)
	case isConfigMap(uri):
		return store.Open(ctx, uri)
	default:
		return store.OpenFile(uri, version)
	}
}
