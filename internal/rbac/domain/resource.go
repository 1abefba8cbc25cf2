package domain

// ResourceContext identifies the concrete resource a permission check is
// scoped to. OwnerID carries the resource owner when the caller knows it, so
// ownership policies can decide without loading the resource themselves.
type ResourceContext struct {
	Type    string
	ID      string
	OwnerID string
}
