package dto

// ReservationActionRequest is the request body for capturing or releasing a
// reservation. Amount defaults to the remaining reserved amount when omitted.
type ReservationActionRequest struct {
	Amount      *int64            `json:"amount" binding:"omitempty,gt=0"`
	Description string            `json:"description"`
	Source      string            `json:"source"`
	ExternalID  string            `json:"externalID"`
	Metadata    map[string]string `json:"metadata"`
}

// Outcomes accepted by the complete endpoint.
const (
	OutcomeCaptured = "captured"
	OutcomeReleased = "released"
)

// CompleteReservationRequest closes the reserve -> external effect ->
// capture-or-release saga: the caller reports the external outcome and the
// coordinator dispatches to capture or release.
type CompleteReservationRequest struct {
	Outcome     string            `json:"outcome" binding:"required,oneof=captured released"`
	Amount      *int64            `json:"amount" binding:"omitempty,gt=0"`
	Description string            `json:"description"`
	Source      string            `json:"source"`
	ExternalID  string            `json:"externalID"`
	Metadata    map[string]string `json:"metadata"`
}
