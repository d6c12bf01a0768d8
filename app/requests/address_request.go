package requests

// ResolveAddressRequest is the single-address resolution request.
type ResolveAddressRequest struct {
	Address string         `json:"address" binding:"required"`
	Options ResolveOptions `json:"options,omitempty"`
}

// ResolveOptions tunes one resolution request.
type ResolveOptions struct {
	UseCache bool `json:"use_cache,omitempty"`
}

// BatchResolveRequest resolves several addresses in one call. The batch is
// capped; larger workloads belong to the offline pipeline.
type BatchResolveRequest struct {
	Addresses []string       `json:"addresses" binding:"required,min=1,max=500"`
	Options   ResolveOptions `json:"options,omitempty"`
}
