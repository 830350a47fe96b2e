package airiq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAuthScheme(t *testing.T) {
	assert.Equal(t, AuthSchemeBearer, ParseAuthScheme("bearer"))
	assert.Equal(t, AuthSchemeBearer, ParseAuthScheme("Bearer"))
	assert.Equal(t, AuthSchemeRaw, ParseAuthScheme("raw"))
	assert.Equal(t, AuthSchemeRaw, ParseAuthScheme(""))
	assert.Equal(t, AuthSchemeRaw, ParseAuthScheme("unknown"))
}

func TestAuthSchemeHeaders(t *testing.T) {
	assert.Equal(t, "ZW5jb2RlZA==", AuthSchemeRaw.loginAuthorization("ZW5jb2RlZA=="))
	assert.Equal(t, "TOK123", AuthSchemeRaw.dataAuthorization("TOK123"))

	assert.Equal(t, "Basic ZW5jb2RlZA==", AuthSchemeBearer.loginAuthorization("ZW5jb2RlZA=="))
	assert.Equal(t, "Bearer TOK123", AuthSchemeBearer.dataAuthorization("TOK123"))

	assert.Equal(t, AuthSchemeBearer, AuthSchemeRaw.alternate())
	assert.Equal(t, AuthSchemeRaw, AuthSchemeBearer.alternate())
}

func TestTokenRejected(t *testing.T) {
	tests := []struct {
		name   string
		status *StatusInfo
		want   bool
	}{
		{name: "nil status", status: nil, want: false},
		{name: "success", status: &StatusInfo{ResultCode: "1", Description: "Success"}, want: false},
		{name: "empty result code", status: &StatusInfo{Description: "Token Timeout Expired"}, want: false},
		{name: "token timeout", status: &StatusInfo{ResultCode: "6", Description: "Token Timeout Expired"}, want: true},
		{name: "session expired", status: &StatusInfo{ResultCode: "9", Description: "Session Expired"}, want: true},
		{name: "unrelated failure", status: &StatusInfo{ResultCode: "2", Description: "No flights found"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenRejected(tt.status))
		})
	}
}

func TestAvailabilityRequestPayload(t *testing.T) {
	agent := AgentInfo{AgentID: "AG100", UserName: "agent", AppType: appType, Version: appVersion}

	req := AvailabilityRequest{
		Origin:      " del ",
		Destination: "bom",
		Date:        time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
	}

	payload, err := req.payload(agent)
	require.NoError(t, err)

	require.Len(t, payload.AvailInfo, 1)
	segment := payload.AvailInfo[0]
	assert.Equal(t, "DEL", segment.DepartureStation)
	assert.Equal(t, "BOM", segment.ArrivalStation)
	assert.Equal(t, "20251015", segment.FlightDate)
	assert.Equal(t, "E", segment.FarecabinOption)
	assert.Equal(t, "N", segment.FareType)
	assert.False(t, segment.OnlyDirectFlight)

	assert.Equal(t, "O", payload.TripType)
	assert.Equal(t, agent, payload.AgentInfo)

	// A search with no passenger counts means one adult.
	assert.Equal(t, 1, payload.PassengersInfo.AdultCount)
	assert.Equal(t, 0, payload.PassengersInfo.ChildCount)
	assert.Equal(t, 0, payload.PassengersInfo.InfantCount)
}

func TestAvailabilityRequestPayloadValidation(t *testing.T) {
	valid := AvailabilityRequest{
		Origin:      "DEL",
		Destination: "BOM",
		Date:        time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		Adults:      2,
	}

	tests := []struct {
		name      string
		mutate    func(*AvailabilityRequest)
		wantField string
	}{
		{name: "empty origin", mutate: func(r *AvailabilityRequest) { r.Origin = "" }, wantField: "origin"},
		{name: "long origin", mutate: func(r *AvailabilityRequest) { r.Origin = "DELH" }, wantField: "origin"},
		{name: "numeric destination", mutate: func(r *AvailabilityRequest) { r.Destination = "B1M" }, wantField: "destination"},
		{name: "zero date", mutate: func(r *AvailabilityRequest) { r.Date = time.Time{} }, wantField: "date"},
		{name: "negative adults", mutate: func(r *AvailabilityRequest) { r.Adults = -1 }, wantField: "adults"},
		{name: "negative children", mutate: func(r *AvailabilityRequest) { r.Children = -1 }, wantField: "children"},
		{name: "negative infants", mutate: func(r *AvailabilityRequest) { r.Infants = -2 }, wantField: "infants"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			_, err := req.payload(AgentInfo{})

			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.wantField, valErr.Field)
		})
	}
}
