// Package storefront holds the shared pieces of the storefront module: the
// logger contract, structured errors, bearer token claims and environment
// configuration.
//
// Authentication state:
//   - authstate derives the caller identity from a token kept in client side
//     storage. Decoding failures never reach the caller; the token is evicted
//     and the state falls back to anonymous. Observers are notified after
//     every derivation.
//   - localstore provides durable key/value stores (sqlite via bun, redis)
//     for the token.
//
// Checkout:
//   - checkout turns the current cart into a hosted payment session and
//     fulfills orders from provider webhooks. Cart, customer, order and
//     payment collaborators are injected.
//   - payment/stripepay talks to Stripe with an injected secret key.
//   - repository stores products, carts and orders with bun.
//
// Errors:
//   - Every error that crosses a package boundary is a go-errors value with a
//     text code (see errors.go). Use IsCollaboratorError and
//     IsUpstreamPaymentError to classify checkout failures.
package storefront
