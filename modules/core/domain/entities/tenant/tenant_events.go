package tenant

type CreatedEvent struct {
	Result *Tenant
}

type UpdatedEvent struct {
	Result *Tenant
}
