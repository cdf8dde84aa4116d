package raghouse_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/raghouse"
	"github.com/hupe1980/raghouse/client/clienttest"
	"github.com/hupe1980/raghouse/record"
	"github.com/hupe1980/raghouse/table"
)

// Example demonstrates creating a repository and adding a record. A
// scripted client stands in for a live ClickHouse connection.
func Example() {
	ctx := context.Background()

	repo, err := raghouse.New(ctx, clienttest.New(), "documents",
		raghouse.WithLogger(raghouse.NoopLogger()),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	err = repo.Add(ctx, record.Record{
		"id":     "doc-1",
		"title":  "introduction to vector search",
		"vector": []float64{0.1, 0.9},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("record added")
	// Output: record added
}

// Example_schema demonstrates declaring a schema so the table is created
// on first use.
func Example_schema() {
	ctx := context.Background()

	c := clienttest.New()
	c.QueueResult([]record.Record{{"result": uint8(0)}}) // table does not exist yet

	_, err := raghouse.New(ctx, c, "documents",
		raghouse.WithLogger(raghouse.NoopLogger()),
		raghouse.WithSchema(table.Schema{
			"id":     "String",
			"title":  "String",
			"vector": "Array(Float64)",
		}, "MergeTree", "id"),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("table ready")
	// Output: table ready
}
