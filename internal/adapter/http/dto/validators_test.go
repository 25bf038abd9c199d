package dto

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidations(v)
	return v
}

func validMapping() CreateMappingRequest {
	return CreateMappingRequest{
		VenueID:         "7b3c6a2e-0d1f-4c55-9a6e-3f1d2b4c5a6e",
		Provider:        "tablecheck",
		ProviderVenueID: "tc-shop-1",
		Timezone:        "Asia/Singapore",
		SeatingTypes:    []string{"indoor", "bar"},
	}
}

func TestCreateMappingRequest_Valid(t *testing.T) {
	req := validMapping()
	assert.NoError(t, newValidator().Struct(req))
}

func TestCreateMappingRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateMappingRequest)
	}{
		{"unknown provider", func(r *CreateMappingRequest) { r.Provider = "quandoo" }},
		{"bad venue id", func(r *CreateMappingRequest) { r.VenueID = "venue-1" }},
		{"bad timezone", func(r *CreateMappingRequest) { r.Timezone = "Mars/Olympus" }},
		{"unsafe provider venue id", func(r *CreateMappingRequest) { r.ProviderVenueID = "shop 1;drop" }},
		{"unsafe seating type", func(r *CreateMappingRequest) { r.SeatingTypes = []string{"<b>"} }},
		{"bad currency", func(r *CreateMappingRequest) { r.Policies.Currency = "SGDX" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validMapping()
			tt.mutate(&req)
			assert.Error(t, newValidator().Struct(req))
		})
	}
}

func TestProviderValidation_CaseInsensitive(t *testing.T) {
	req := validMapping()
	req.Provider = "SevenRooms"
	assert.NoError(t, newValidator().Struct(req))
}

func TestSyncRequest_Validation(t *testing.T) {
	v := newValidator()
	for _, op := range []string{"create", "update", "cancel"} {
		assert.NoError(t, v.Struct(SyncRequest{Operation: op}), op)
	}
	assert.Error(t, v.Struct(SyncRequest{Operation: "merge"}))
	assert.Error(t, v.Struct(SyncRequest{}))
}

func TestListQueries_Validation(t *testing.T) {
	v := newValidator()
	assert.NoError(t, v.Struct(ExternalReservationListQuery{Status: "failed", Provider: "chope"}))
	assert.Error(t, v.Struct(ExternalReservationListQuery{Status: "lost"}))
	assert.Error(t, v.Struct(ExternalReservationListQuery{ListQuery: ListQuery{PageSize: 500}}))
	assert.NoError(t, v.Struct(WebhookEventListQuery{Status: "processed"}))
	assert.Error(t, v.Struct(WebhookEventListQuery{Status: "done"}))
}

func TestAvailabilityQuery_Validation(t *testing.T) {
	v := newValidator()
	assert.NoError(t, v.Struct(AvailabilityQuery{Date: "2026-03-10", PartySize: 2}))
	assert.Error(t, v.Struct(AvailabilityQuery{Date: "10/03/2026", PartySize: 2}))
	assert.Error(t, v.Struct(AvailabilityQuery{Date: "2026-03-10", PartySize: 0}))
}

func TestSanitizeStruct_LeavesCredentials(t *testing.T) {
	venue := "  sr-venue-9 "
	req := UpdateMappingRequest{
		ProviderVenueID: &venue,
		Credentials:     &CredentialsRequest{APIKey: "k&<1>"},
	}
	SanitizeStruct(&req)

	assert.Equal(t, "sr-venue-9", *req.ProviderVenueID)
	assert.Equal(t, "k&<1>", req.Credentials.APIKey)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := CreateMappingRequest{ProviderVenueID: "<script>x</script>"}
	SanitizeStruct(&req)
	assert.NotContains(t, req.ProviderVenueID, "<script>")
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	req := SyncRequest{Operation: " create "}
	SanitizeStruct(req)
	assert.Equal(t, " create ", req.Operation)
}

func TestNewListResponse(t *testing.T) {
	resp := NewListResponse[int](nil, 41, 3, 20)
	assert.Equal(t, 3, resp.TotalPages)
	assert.NotNil(t, resp.Items)
}
