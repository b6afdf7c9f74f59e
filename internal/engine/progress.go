package engine

// Progress receives ingestion events. Implementations must be cheap; they
// are called once per record.
type Progress interface {
	TenantStarted(tenant string, total int)
	RecordProcessed(tenant string, inserted bool)
	TenantDone(res TenantResult)
	TenantMissing(tenant, path string)
}

// NopProgress ignores every event.
type NopProgress struct{}

func (NopProgress) TenantStarted(string, int) {}
func (NopProgress) RecordProcessed(string, bool) {}
func (NopProgress) TenantDone(TenantResult) {}
func (NopProgress) TenantMissing(string, string) {}

// MultiProgress forwards events to several sinks in order.
type MultiProgress []Progress

func (m MultiProgress) TenantStarted(tenant string, total int) {
	for _, p := range m {
		p.TenantStarted(tenant, total)
	}
}

func (m MultiProgress) RecordProcessed(tenant string, inserted bool) {
	for _, p := range m {
		p.RecordProcessed(tenant, inserted)
	}
}

func (m MultiProgress) TenantDone(res TenantResult) {
	for _, p := range m {
		p.TenantDone(res)
	}
}

func (m MultiProgress) TenantMissing(tenant, path string) {
	for _, p := range m {
		p.TenantMissing(tenant, path)
	}
}
