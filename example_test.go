package trinitylake_test

import (
	"context"
	"fmt"

	"github.com/trinitylake/trinitylake-go/storage/memorystore"
	"github.com/trinitylake/trinitylake-go/txn"
)

// Example demonstrates embedding the transaction engine over the
// in-memory storage backend: creating a lakehouse, a namespace, a table,
// and committing the change.
func Example() {
	ctx := context.Background()
	engine := txn.New(memorystore.New())

	if _, err := engine.CreateLakehouse(ctx, "analytics"); err != nil {
		fmt.Println("create lakehouse failed:", err)
		return
	}

	run, err := engine.BeginTransaction(ctx)
	if err != nil {
		fmt.Println("begin failed:", err)
		return
	}

	run, err = engine.CreateNamespace(ctx, run, "sales", map[string]string{"owner": "bi-team"})
	if err != nil {
		fmt.Println("create namespace failed:", err)
		return
	}

	run, err = engine.CreateTable(ctx, run, "sales", "orders", nil)
	if err != nil {
		fmt.Println("create table failed:", err)
		return
	}

	if _, err := engine.CommitTransaction(ctx, run); err != nil {
		fmt.Println("commit failed:", err)
		return
	}

	final, err := engine.BeginTransaction(ctx)
	if err != nil {
		fmt.Println("begin failed:", err)
		return
	}

	tables, err := engine.ShowTables(ctx, final, "sales")
	if err != nil {
		fmt.Println("show tables failed:", err)
		return
	}

	fmt.Println(tables)
	// Output: [orders]
}
