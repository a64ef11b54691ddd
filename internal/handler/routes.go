package handler

// Paths names the resources mounted under one API prefix.
type Paths struct {
	Events      string
	Attendees   string
	Tickets     string
	Promotions  string
	Attendances string
}

var (
	// EnglishPaths is mounted under /api/v1.
	EnglishPaths = Paths{
		Events:      "events",
		Attendees:   "attendees",
		Tickets:     "tickets",
		Promotions:  "promotions",
		Attendances: "attendances",
	}
	// SpanishPaths is mounted under /api, the prefix the admin UI calls.
	SpanishPaths = Paths{
		Events:      "eventos",
		Attendees:   "asistentes",
		Tickets:     "tickets",
		Promotions:  "promociones",
		Attendances: "asistencias",
	}
)
