// Package app composes the channel layer services.
//
// The application exposes two cooperating services. The registry validates
// and persists payable channel records and resolves them by derived route.
// The payment builder turns a resolved record plus a payer address into an
// unsigned GAS transfer transaction pinned to a fresh ledger checkpoint.
//
// Services receive their dependencies through narrow interfaces so the HTTP
// surface, the storage backends and the chain client stay swappable in tests.
package app
