// Package docflow embeds the docflow services in a Go program, talking to the document
// store directly instead of through the HTTP API.
//
//	client, _ := docflow.New(ctx,
//	    docflow.WithElasticsearch("http://localhost:9200"),
//	    docflow.WithCredentials(docflow.Credentials{Username: "reader"}, docflow.Credentials{Username: "writer"}),
//	)
//	defer client.Close()
//
//	events, _ := client.Flow().ByClaimID(ctx, 100)
//	res, _ := client.Documents("claims").BulkInsert(ctx, docs)
//	out, _ := client.Journeys().Update(ctx, "j1", map[string]any{"title": "new"}, nil)
package docflow
