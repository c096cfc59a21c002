package tenant

// Claim names carried in the JWT, shared between token issuing (svc/auth)
// and resolution here.
const (
	ClaimOrgID    = "OrgId"
	ClaimOrgName  = "OrgName"
	ClaimUserID   = "sub"
	ClaimUsername = "username"
)

// Identity is the tenant context of an authenticated request. It is created
// once per request by ResolveMiddleware and is immutable for the request's
// lifetime; it is never persisted.
type Identity struct {
	OrgID    string // opaque tenant key, a UUID string in practice
	UserID   string
	Username string
}
