// Package discover is a Go client for the catalog discover API.
//
//	client, _ := discover.New("http://localhost:8080")
//	resp, err := client.Discover(ctx, &discover.Request{
//	    Context: discover.NewContext("my-network",
//	        "https://becknprotocol.io/schema/items/SmartphoneItem/schema-context.jsonld"),
//	    TextSearch: "camera",
//	    Filters:    "$[?(@['beckn:price'].value < 800)]",
//	    Pagination: &discover.Pagination{Page: 1, Limit: 10},
//	})
//
// Validation failures come back as *APIError; use errors.As or IsCode.
//
//	if discover.IsCode(err, discover.CodeInvalidFilter) { ... }
//
// BrowserSearch calls the GET endpoint, which synthesises the request
// context on the server and requires at least one schema context plus a
// text term or a filter.
package discover
