// Package colbertdb provides a Go client for the colbertDB document search service.
//
// The client is a thin mapping layer over the service's JSON HTTP API:
// it authenticates with an API key, validates requests at the boundary
// and turns responses and failures into typed values. Ranking and storage
// are owned by the server.
//
//	client, err := colbertdb.New(ctx,
//	    colbertdb.WithBaseURL("http://localhost:8080"),
//	    colbertdb.WithAPIKey(os.Getenv("COLBERTDB_API_KEY")),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	col, err := client.CreateCollection(ctx, "notes", []colbertdb.Document{
//	    {Content: "Go channels are typed conduits", Metadata: map[string]string{"source": "u1"}},
//	}, colbertdb.ForceCreate())
//	res, err := col.Search(ctx, "typed conduits", 3)
//
// Every error matches one kind via errors.Is: ErrConnection, ErrTimeout,
// ErrValidation, ErrNotFound, ErrConflict, ErrService or ErrRateLimited.
// Server failures additionally carry an *APIError with the server message.
// Nothing is retried.
package colbertdb
