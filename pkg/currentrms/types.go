package currentrms

// RawParty is the nested owner/organisation shape on a listing record.
type RawParty struct {
	Name string `json:"name"`
}

// RawOpportunity is an opportunity record exactly as the Current RMS API
// returns it. The custom-field store upstream is schemaless text and
// historically inconsistent, so loosely typed fields tolerate numbers
// arriving as strings, booleans as "Yes"/"" and so on. Canonicalization
// happens in internal/normalize, not here.
type RawOpportunity struct {
	ID               any            `json:"id"`
	Subject          any            `json:"subject"`
	StartsAt         any            `json:"starts_at"`
	ChargeTotal      any            `json:"charge_total"`
	Charge           any            `json:"charge"`
	CostTotal        any            `json:"cost_total"`
	Owner            *RawParty      `json:"owner,omitempty"`
	OpportunityOwner *RawParty      `json:"opportunity_owner,omitempty"`
	Organisation     *RawParty      `json:"organisation,omitempty"`
	UpdatedAt        any            `json:"updated_at"`
	CustomFields     map[string]any `json:"custom_fields,omitempty"`
}

// Meta is the pagination metadata on a listing response.
type Meta struct {
	TotalRowCount int `json:"total_row_count"`
	PerPage       int `json:"per_page"`
	Page          int `json:"page"`
	RowCount      int `json:"row_count"`
}

// OpportunityPage is one decoded page of the opportunities listing.
type OpportunityPage struct {
	Opportunities []RawOpportunity `json:"opportunities"`
	Meta          Meta             `json:"meta"`
}

// ListParams are the query parameters for the opportunities listing.
// StartsAtGTEQ/StartsAtLTEQ are ISO dates on the local calendar day, not
// UTC-shifted instants.
type ListParams struct {
	StartsAtGTEQ string
	StartsAtLTEQ string
	Page         int
	PerPage      int
}
