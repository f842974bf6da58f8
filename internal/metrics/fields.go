package metrics

// Shared otel attribute keys.
const (
	AttrCategory = "category"
	AttrResult   = "result"
)
