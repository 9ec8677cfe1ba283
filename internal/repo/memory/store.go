package memory

import "engage-api/internal/repo"

var (
	_ repo.CampaignStore    = &CampaignStore{}
	_ repo.TicketStore      = &TicketStore{}
	_ repo.BookingStore     = &BookingStore{}
	_ repo.MemberStore      = &MemberStore{}
	_ repo.AuditLogger      = &AuditStore{}
	_ repo.IdempotencyStore = &IdempotencyStore{}
)
