package store

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pcbshop/boardopts/pkg/defaults"
	pcberrors "github.com/pcbshop/boardopts/pkg/errors"
	"github.com/pcbshop/boardopts/pkg/options"
	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
)

// Labels, annotations and data keys of snapshot ConfigMaps.
const (
	LabelManagedBy    = "app.kubernetes.io/managed-by"
	LabelSnapshotKind = "pcbshop.io/snapshot-kind"
	LabelVendor       = "pcbshop.io/vendor"

	AnnotationVendor  = "pcbshop.io/vendor-name"
	AnnotationCreated = "pcbshop.io/created"

	DataKeyOptions = "options.yaml"

	managedBy = "pcbshop"
)

var labelUnsafe = regexp.MustCompile(`[^a-z0-9._-]+`)

// ConfigMapStore keeps one ConfigMap per snapshot in a single namespace.
// ConfigMaps are never updated; publishing creates a new one.
type ConfigMapStore struct {
	client    kubernetes.Interface
	namespace string
	now       func() time.Time
}

// NewConfigMapStore returns a store over the given namespace.
func NewConfigMapStore(client kubernetes.Interface, namespace string) *ConfigMapStore {
	return &ConfigMapStore{
		client:    client,
		namespace: namespace,
		now:       time.Now,
	}
}

// Namespace returns the namespace the store reads and writes.
func (c *ConfigMapStore) Namespace() string { return c.namespace }

// LatestOffered returns the most recent offered snapshot.
func (c *ConfigMapStore) LatestOffered(ctx context.Context) (*Snapshot, error) {
	snap, err := c.latest(ctx, KindOffered, "")
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, errNoOffered()
	}
	return snap, nil
}

// LatestExternal returns the most recent external snapshot of vendor.
func (c *ConfigMapStore) LatestExternal(ctx context.Context, vendor string) (*Snapshot, error) {
	snap, err := c.latest(ctx, KindExternal, vendor)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, errNoExternal(vendor)
	}
	return snap, nil
}

// PublishOffered creates a new offered snapshot ConfigMap.
func (c *ConfigMapStore) PublishOffered(ctx context.Context, opts options.OptionSet) (*Snapshot, error) {
	return c.create(ctx, newSnapshot(KindOffered, "", c.now(), opts))
}

// RecordExternal creates a new external snapshot ConfigMap for vendor.
func (c *ConfigMapStore) RecordExternal(ctx context.Context, vendor string, opts options.OptionSet) (*Snapshot, error) {
	if vendor == "" {
		return nil, pcberrors.New(pcberrors.ErrCodeInvalidRequest, "vendor is required")
	}
	return c.create(ctx, newSnapshot(KindExternal, vendor, c.now(), opts))
}

// Vendors lists vendors with at least one external snapshot ConfigMap.
func (c *ConfigMapStore) Vendors(ctx context.Context) ([]string, error) {
	list, err := c.list(ctx, labels.Set{LabelSnapshotKind: string(KindExternal)})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for i := range list.Items {
		if v := list.Items[i].Annotations[AnnotationVendor]; v != "" {
			seen[v] = struct{}{}
		}
	}
	vendors := make([]string, 0, len(seen))
	for v := range seen {
		vendors = append(vendors, v)
	}
	sort.Strings(vendors)
	return vendors, nil
}

func (c *ConfigMapStore) create(ctx context.Context, snap *Snapshot) (*Snapshot, error) {
	cm, err := toConfigMap(snap)
	if err != nil {
		return nil, pcberrors.Wrap(pcberrors.ErrCodeInternal, "failed to encode snapshot", err)
	}
	cm.Namespace = c.namespace

	ctx, cancel := context.WithTimeout(ctx, defaults.KubernetesAPITimeout)
	defer cancel()

	if _, err := c.client.CoreV1().ConfigMaps(c.namespace).Create(ctx, cm, metav1.CreateOptions{}); err != nil {
		return nil, pcberrors.WrapWithContext(pcberrors.ErrCodeUnavailable, "failed to create snapshot ConfigMap", err,
			map[string]any{"namespace": c.namespace, "name": cm.Name})
	}

	slog.Debug("snapshot ConfigMap created",
		"namespace", c.namespace,
		"name", cm.Name,
		"kind", snap.Kind,
		"vendor", snap.Vendor)
	return snap.Clone(), nil
}

func (c *ConfigMapStore) latest(ctx context.Context, kind SnapshotKind, vendor string) (*Snapshot, error) {
	selector := labels.Set{LabelSnapshotKind: string(kind)}
	if vendor != "" {
		selector[LabelVendor] = vendorLabel(vendor)
	}
	list, err := c.list(ctx, selector)
	if err != nil {
		return nil, err
	}

	snaps := make([]*Snapshot, 0, len(list.Items))
	for i := range list.Items {
		cm := &list.Items[i]
		// Distinct vendor names may share a sanitized label value.
		if vendor != "" && cm.Annotations[AnnotationVendor] != vendor {
			continue
		}
		snap, err := fromConfigMap(cm)
		if err != nil {
			slog.Warn("skipping unreadable snapshot ConfigMap",
				"namespace", cm.Namespace,
				"name", cm.Name,
				"error", err)
			continue
		}
		snaps = append(snaps, snap)
	}
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
	return latest(snaps), nil
}

func (c *ConfigMapStore) list(ctx context.Context, selector labels.Set) (*corev1.ConfigMapList, error) {
	selector[LabelManagedBy] = managedBy

	ctx, cancel := context.WithTimeout(ctx, defaults.KubernetesAPITimeout)
	defer cancel()

	list, err := c.client.CoreV1().ConfigMaps(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: selector.String(),
	})
	if err != nil {
		return nil, pcberrors.WrapWithContext(pcberrors.ErrCodeUnavailable, "failed to list snapshot ConfigMaps", err,
			map[string]any{"namespace": c.namespace})
	}
	return list, nil
}

func toConfigMap(snap *Snapshot) (*corev1.ConfigMap, error) {
	data, err := yaml.Marshal(snap.Options)
	if err != nil {
		return nil, err
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name: fmt.Sprintf("pcbshop-%s-%s", snap.Kind, snap.ID),
			Labels: map[string]string{
				LabelManagedBy:    managedBy,
				LabelSnapshotKind: string(snap.Kind),
			},
			Annotations: map[string]string{
				AnnotationCreated: snap.Created.Format(time.RFC3339Nano),
			},
		},
		Data: map[string]string{
			DataKeyOptions: string(data),
		},
	}
	if snap.Vendor != "" {
		cm.Labels[LabelVendor] = vendorLabel(snap.Vendor)
		cm.Annotations[AnnotationVendor] = snap.Vendor
	}
	return cm, nil
}

func fromConfigMap(cm *corev1.ConfigMap) (*Snapshot, error) {
	raw, ok := cm.Data[DataKeyOptions]
	if !ok {
		return nil, fmt.Errorf("missing %s data key", DataKeyOptions)
	}
	opts, err := options.ParseOptionSet([]byte(raw))
	if err != nil {
		return nil, err
	}

	created := cm.CreationTimestamp.Time
	if v, ok := cm.Annotations[AnnotationCreated]; ok {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s annotation: %w", AnnotationCreated, err)
		}
		created = t
	}

	snap := &Snapshot{
		ID:      snapshotID(cm),
		Kind:    SnapshotKind(cm.Labels[LabelSnapshotKind]),
		Vendor:  cm.Annotations[AnnotationVendor],
		Created: created.UTC(),
		Options: opts,
	}
	if err := snap.Check(); err != nil {
		return nil, err
	}
	return snap, nil
}

func snapshotID(cm *corev1.ConfigMap) string {
	prefix := "pcbshop-" + cm.Labels[LabelSnapshotKind] + "-"
	if id, ok := strings.CutPrefix(cm.Name, prefix); ok {
		return id
	}
	return cm.Name
}

// vendorLabel reduces a vendor name to a valid label value.
func vendorLabel(vendor string) string {
	v := labelUnsafe.ReplaceAllString(strings.ToLower(vendor), "-")
	v = strings.Trim(v, "-._")
	if len(v) > 63 {
		v = strings.TrimRight(v[:63], "-._")
	}
	return v
}
