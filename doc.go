// Package raghouse presents one ClickHouse table as a retrieval-augmented
// generation record repository: typed CRUD, pluggable text-to-vector
// embedding, server-side cosine-similarity ranking, and multi-format bulk
// backup/restore.
//
// The Repository facade composes the schema manager, record store,
// vectorizer registry, similarity search engine, and backup coordinator
// behind one contract:
//
//	ch := client.NewClickHouse(&clickhouse.Options{Addr: []string{"localhost:9000"}})
//	if err := ch.Connect(ctx); err != nil { ... }
//
//	repo, err := raghouse.New(ctx, ch, "documents",
//	    raghouse.WithSchema(table.Schema{
//	        "id":     "String",
//	        "title":  "String",
//	        "vector": "Array(Float64)",
//	    }, "MergeTree", "id"),
//	)
//
//	repo.RegisterVectorizer("openai", myVectorizer)
//	err = repo.Add(ctx, record.Record{"id": "1", "title": "hello"},
//	    raghouse.WithVectorizerName("openai"))
//
// Every public operation is synchronous and blocks until the server round
// trip completes. One repository owns one client session; concurrent use of
// a single repository from multiple goroutines is not a supported mode.
package raghouse
