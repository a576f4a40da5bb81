// context.go carries the resolved tenant through the request context so
// handlers never redo the hostname lookup.
package tenant

import "context"

type ctxKey struct{} // unexported, collision-proof

// WithTenant returns a child context carrying ten.
func WithTenant(ctx context.Context, ten *Tenant) context.Context {
	return context.WithValue(ctx, ctxKey{}, ten)
}

// FromContext returns the tenant stored by the binding middleware, or nil
// when resolution found nothing and no fallback is configured.
func FromContext(ctx context.Context) *Tenant {
	v, _ := ctx.Value(ctxKey{}).(*Tenant)
	return v
}
