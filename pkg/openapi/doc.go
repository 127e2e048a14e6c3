// Package openapi is a thin client for the OpenAPI (openapi.it) REST services.
//
// Two clients are provided:
//
//   - OAuthClient authenticates with Basic credentials (username and API key)
//     and manages access tokens on the OAuth service: listing scopes, creating,
//     listing and deleting tokens, and reading usage counters.
//   - Client authenticates with a Bearer token and performs arbitrary JSON
//     calls against any OpenAPI endpoint.
//
// Every operation issues exactly one HTTP request and returns the response
// body as text. Non-2xx replies and transport failures are returned as *Error
// values carrying the status code, body and an ErrorKind; nothing is retried.
//
// Example:
//
//	oc, err := openapi.NewOAuthClient("user", "apikey", true)
//	if err != nil {
//		log.Fatal(err)
//	}
//	body, err := oc.CreateToken(ctx, []string{"GET:test.imprese.openapi.it/advance"}, 3600)
//	if err != nil {
//		log.Fatal(err)
//	}
//	tok, err := openapi.ParseTokenResponse(body)
//
// Both clients are safe for concurrent use.
package openapi
