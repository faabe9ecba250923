package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	pcberrors "github.com/pcbshop/boardopts/pkg/errors"
	"github.com/pcbshop/boardopts/pkg/k8s/client"
)

const (
	// SourceEmbedded selects the embedded default snapshots.
	SourceEmbedded = "embedded"

	// ConfigMapURIScheme selects a ConfigMapStore, as in cm://namespace.
	ConfigMapURIScheme = "cm://"
)

// Open returns the Store named by uri. See the package documentation for
// the accepted forms.
func Open(ctx context.Context, uri string) (Store, error) {
	switch {
	case uri == "" || uri == SourceEmbedded:
		slog.Debug("using embedded option snapshots")
		m, err := Load(ctx)
		if err != nil {
			return nil, err
		}
		return ReadOnly(m, SourceEmbedded), nil

	case strings.HasPrefix(uri, ConfigMapURIScheme):
		namespace, err := parseConfigMapURI(uri)
		if err != nil {
			return nil, err
		}
		cs, _, err := client.GetKubeClient()
		if err != nil {
			return nil, pcberrors.Wrap(pcberrors.ErrCodeUnavailable, "failed to create kubernetes client", err)
		}
		slog.Debug("using ConfigMap option snapshots", "namespace", namespace)
		return NewConfigMapStore(cs, namespace), nil

	default:
		slog.Debug("using option snapshot file", "path", uri)
		m, err := FromFile(uri)
		if err != nil {
			return nil, err
		}
		return newFileStore(m, uri, ""), nil
	}
}

// parseConfigMapURI extracts the namespace from cm://namespace.
func parseConfigMapURI(uri string) (string, error) {
	ns := strings.TrimPrefix(uri, ConfigMapURIScheme)
	ns = strings.TrimSuffix(ns, "/")
	if ns == "" || strings.Contains(ns, "/") {
		return "", pcberrors.New(pcberrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid ConfigMap URI %q, expected %snamespace", uri, ConfigMapURIScheme))
	}
	return ns, nil
}
