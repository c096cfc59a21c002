// Package tenant resolves and enforces tenant identity on authenticated
// requests.
//
// Every organization owns a physically separate database, so knowing which
// tenant a request acts for is a prerequisite for any data access. The package
// provides two middlewares that run after JWT verification:
//
//  1. ResolveMiddleware turns the verified claim set into an Identity and
//     publishes it into the request context. Authenticated requests without a
//     tenant or user claim are rejected before any handler runs;
//     unauthenticated requests (public endpoints such as login) pass through
//     untouched.
//
//  2. GuardMiddleware blocks cross-tenant access attempts: if the request
//     carries a parameter named orgId (route, query, or top-level JSON body
//     field) whose value differs from the token's tenant, the request is
//     rejected with 403 and the attempt is logged for audit tooling.
//
// Handlers read the identity with FromContext or MustFromContext; the latter
// panics when no identity is present, so a tenant-scoped handler can never
// silently run unscoped.
package tenant
