package context

type Key string

const (
	Tenant Key = "tenant"
	Params Key = "params"
)
