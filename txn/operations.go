package txn

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/trinitylake/trinitylake-go/errors"
	"github.com/trinitylake/trinitylake-go/objects"
	"github.com/trinitylake/trinitylake-go/tree"
)

// CreateNamespace writes a namespace descriptor blob and sets its key in a
// clone of txn's running root. It fails with errors.KindAlreadyExists if
// the namespace key is already present.
func (e *Engine) CreateNamespace(ctx context.Context, txn *RunningTransaction, name string, properties map[string]string) (*RunningTransaction, error) {
	e.metrics.RecordOperation("createNamespace")

	nsKey, err := txn.Encoder.NamespaceKey(name)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(nsKey); exists {
		return nil, errors.AlreadyExists("namespace", name)
	}

	def := &objects.NamespaceDef{Name: name, Properties: properties, CreatedAt: time.Now()}
	data, err := objects.Marshal(def)
	if err != nil {
		return nil, err
	}
	path := tree.NamespaceDefPath(name)
	if err := e.storage.Write(ctx, path, data); err != nil {
		return nil, err
	}

	next := txn.RunningRoot.Clone()
	next.Set(nsKey, path)

	e.logger.Debug("namespace created", zap.String("txn_id", txn.ID), zap.String("namespace", name))
	return txn.withRunningRoot(next), nil
}

// AlterNamespace writes a new namespace descriptor blob and swings the
// node's pointer to it, leaving the prior blob readable. It fails with
// errors.KindNotFound if the namespace key is absent.
func (e *Engine) AlterNamespace(ctx context.Context, txn *RunningTransaction, name string, properties map[string]string) (*RunningTransaction, error) {
	e.metrics.RecordOperation("alterNamespace")

	nsKey, err := txn.Encoder.NamespaceKey(name)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(nsKey); !exists {
		return nil, errors.NotFound("namespace", name)
	}

	def := &objects.NamespaceDef{Name: name, Properties: properties, CreatedAt: time.Now()}
	data, err := objects.Marshal(def)
	if err != nil {
		return nil, err
	}
	path := tree.NamespaceDefPath(name)
	if err := e.storage.Write(ctx, path, data); err != nil {
		return nil, err
	}

	next := txn.RunningRoot.Clone()
	next.Set(nsKey, path)

	e.logger.Debug("namespace altered", zap.String("txn_id", txn.ID), zap.String("namespace", name))
	return txn.withRunningRoot(next), nil
}

// DropNamespace removes a namespace's key from a clone of the running
// root. It fails with errors.KindNotFound if the namespace key is absent.
func (e *Engine) DropNamespace(ctx context.Context, txn *RunningTransaction, name string) (*RunningTransaction, error) {
	e.metrics.RecordOperation("dropNamespace")

	nsKey, err := txn.Encoder.NamespaceKey(name)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(nsKey); !exists {
		return nil, errors.NotFound("namespace", name)
	}

	next := txn.RunningRoot.Clone()
	next.Remove(nsKey)

	e.logger.Debug("namespace dropped", zap.String("txn_id", txn.ID), zap.String("namespace", name))
	return txn.withRunningRoot(next), nil
}

// CreateTable writes a table descriptor blob and sets its key. It fails
// with errors.KindNotFound if the namespace is absent, or
// errors.KindAlreadyExists if the table key is already present.
func (e *Engine) CreateTable(ctx context.Context, txn *RunningTransaction, namespace, name string, properties map[string]string) (*RunningTransaction, error) {
	e.metrics.RecordOperation("createTable")

	nsKey, err := txn.Encoder.NamespaceKey(namespace)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(nsKey); !exists {
		return nil, errors.NotFound("namespace", namespace)
	}

	tblKey, err := txn.Encoder.TableKey(namespace, name)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(tblKey); exists {
		return nil, errors.AlreadyExists("table", namespace+"."+name)
	}

	def := &objects.TableDef{Namespace: namespace, Name: name, Properties: properties, CreatedAt: time.Now()}
	data, err := objects.Marshal(def)
	if err != nil {
		return nil, err
	}
	path := tree.TableDefPath(namespace, name)
	if err := e.storage.Write(ctx, path, data); err != nil {
		return nil, err
	}

	next := txn.RunningRoot.Clone()
	next.Set(tblKey, path)

	e.logger.Debug("table created", zap.String("txn_id", txn.ID), zap.String("namespace", namespace), zap.String("table", name))
	return txn.withRunningRoot(next), nil
}

// AlterTable writes a new table descriptor blob and swings the pointer.
// It fails with errors.KindNotFound if the namespace or table is absent.
func (e *Engine) AlterTable(ctx context.Context, txn *RunningTransaction, namespace, name string, properties map[string]string) (*RunningTransaction, error) {
	e.metrics.RecordOperation("alterTable")

	nsKey, err := txn.Encoder.NamespaceKey(namespace)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(nsKey); !exists {
		return nil, errors.NotFound("namespace", namespace)
	}

	tblKey, err := txn.Encoder.TableKey(namespace, name)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(tblKey); !exists {
		return nil, errors.NotFound("table", namespace+"."+name)
	}

	def := &objects.TableDef{Namespace: namespace, Name: name, Properties: properties, CreatedAt: time.Now()}
	data, err := objects.Marshal(def)
	if err != nil {
		return nil, err
	}
	path := tree.TableDefPath(namespace, name)
	if err := e.storage.Write(ctx, path, data); err != nil {
		return nil, err
	}

	next := txn.RunningRoot.Clone()
	next.Set(tblKey, path)

	e.logger.Debug("table altered", zap.String("txn_id", txn.ID), zap.String("namespace", namespace), zap.String("table", name))
	return txn.withRunningRoot(next), nil
}

// DropTable removes a table's key. It fails with errors.KindNotFound if
// the namespace or table is absent.
func (e *Engine) DropTable(ctx context.Context, txn *RunningTransaction, namespace, name string) (*RunningTransaction, error) {
	e.metrics.RecordOperation("dropTable")

	nsKey, err := txn.Encoder.NamespaceKey(namespace)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(nsKey); !exists {
		return nil, errors.NotFound("namespace", namespace)
	}

	tblKey, err := txn.Encoder.TableKey(namespace, name)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(tblKey); !exists {
		return nil, errors.NotFound("table", namespace+"."+name)
	}

	next := txn.RunningRoot.Clone()
	next.Remove(tblKey)

	e.logger.Debug("table dropped", zap.String("txn_id", txn.ID), zap.String("namespace", namespace), zap.String("table", name))
	return txn.withRunningRoot(next), nil
}

// DescribeNamespace reads the descriptor blob a namespace key points to.
// It fails with errors.KindNotFound if the namespace key is absent.
func (e *Engine) DescribeNamespace(ctx context.Context, txn *RunningTransaction, name string) (*objects.NamespaceDef, error) {
	e.metrics.RecordOperation("describeNamespace")

	nsKey, err := txn.Encoder.NamespaceKey(name)
	if err != nil {
		return nil, err
	}
	path, exists := txn.RunningRoot.Get(nsKey)
	if !exists {
		return nil, errors.NotFound("namespace", name)
	}
	data, err := e.storage.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return objects.UnmarshalNamespaceDef(data)
}

// DescribeTable reads the descriptor blob a table key points to. It fails
// with errors.KindNotFound if the table key is absent.
func (e *Engine) DescribeTable(ctx context.Context, txn *RunningTransaction, namespace, name string) (*objects.TableDef, error) {
	e.metrics.RecordOperation("describeTable")

	tblKey, err := txn.Encoder.TableKey(namespace, name)
	if err != nil {
		return nil, err
	}
	path, exists := txn.RunningRoot.Get(tblKey)
	if !exists {
		return nil, errors.NotFound("table", namespace+"."+name)
	}
	data, err := e.storage.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return objects.UnmarshalTableDef(data)
}

// ShowNamespaces lists every namespace name present in the running root,
// in key order.
func (e *Engine) ShowNamespaces(_ context.Context, txn *RunningTransaction) ([]string, error) {
	e.metrics.RecordOperation("showNamespaces")

	var names []string
	for _, row := range txn.RunningRoot.Rows() {
		if txn.Encoder.IsNamespaceKey(row.Key) {
			name, err := txn.Encoder.NamespaceNameFromKey(row.Key)
			if err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// ShowTables lists every table name within namespace, in key order. It
// fails with errors.KindNotFound if the namespace is absent. Unlike the
// original source, this filters by the requested namespace.
func (e *Engine) ShowTables(_ context.Context, txn *RunningTransaction, namespace string) ([]string, error) {
	e.metrics.RecordOperation("showTables")

	nsKey, err := txn.Encoder.NamespaceKey(namespace)
	if err != nil {
		return nil, err
	}
	if _, exists := txn.RunningRoot.Get(nsKey); !exists {
		return nil, errors.NotFound("namespace", namespace)
	}

	var names []string
	for _, row := range txn.RunningRoot.Rows() {
		if !txn.Encoder.IsTableKey(row.Key) {
			continue
		}
		ns, table, err := txn.Encoder.TableNameFromKey(row.Key)
		if err != nil {
			return nil, err
		}
		if ns == namespace {
			names = append(names, table)
		}
	}
	sort.Strings(names)
	return names, nil
}

// NamespaceExists reports whether name is present, never erroring on
// absence — the original source throws here; the specified behavior
// intentionally diverges.
func (e *Engine) NamespaceExists(_ context.Context, txn *RunningTransaction, name string) bool {
	e.metrics.RecordOperation("namespaceExists")

	nsKey, err := txn.Encoder.NamespaceKey(name)
	if err != nil {
		return false
	}
	_, exists := txn.RunningRoot.Get(nsKey)
	return exists
}

// TableExists reports whether (namespace, name) is present, never
// erroring on absence.
func (e *Engine) TableExists(_ context.Context, txn *RunningTransaction, namespace, name string) bool {
	e.metrics.RecordOperation("tableExists")

	tblKey, err := txn.Encoder.TableKey(namespace, name)
	if err != nil {
		return false
	}
	_, exists := txn.RunningRoot.Get(tblKey)
	return exists
}
