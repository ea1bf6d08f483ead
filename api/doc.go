// Package api provides a fluent request builder for the Yampi REST API.
//
// A Request accumulates route segments, query parameters, headers and body
// fields through chained calls. A verb call (Get, Post, Put, Patch, Delete)
// executes it and maps failures into typed errors.
//
// Basic Usage:
//
//	req := api.Production().SetMerchant("my-store")
//
//	resp, err := req.Path("catalog").Path("products").
//	    Include("skus", "images").
//	    Search(map[string]string{"name": "Shirt"}).
//	    Limit(10).
//	    Get(context.Background(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(resp.Get("data.0.name").String())
//	fmt.Println(resp.Pagination().TotalPages)
//
// Authentication:
//
//	req := api.AuthProduction().SetMerchant("my-store")
//	if err := req.Login(ctx, "user@example.com", "secret"); err != nil {
//	    log.Fatal(err)
//	}
//	// Every following call carries "Authorization: Bearer <token>".
//
// Errors:
//
// Builder methods never return errors directly. Rejected input is recorded
// on the Request (see Err) and returned by the next execution call, before
// any network I/O. Execution failures are *RequestError values, or
// *ValidationError for 422 responses:
//
//	var valErr *api.ValidationError
//	if errors.As(err, &valErr) {
//	    for field, messages := range valErr.Errors {
//	        fmt.Println(field, messages)
//	    }
//	}
//
// Merchant alias:
//
// The merchant alias is injected between the version and the route, except
// for routes starting with auth, users or pvt. ForceAlias injects it there as
// well; ForgetAlias suppresses it everywhere and wins over ForceAlias.
//
// Thread Safety:
//
// A Request is a mutable builder and is not safe for concurrent use. Give each
// goroutine its own instance.
package api
