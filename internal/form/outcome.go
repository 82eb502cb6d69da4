package form

const RejectedMessage = "Please fill out the form correctly."

type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Outcome is the result of a submission attempt. Data is set only when the
// submission was accepted, Message only when it was rejected.
type Outcome struct {
	Status  Status     `json:"status"`
	Data    *FormState `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
}

func Accepted(values FormState) Outcome {
	return Outcome{Status: StatusAccepted, Data: &values}
}

func Rejected() Outcome {
	return Outcome{Status: StatusRejected, Message: RejectedMessage}
}

func (o Outcome) IsAccepted() bool {
	return o.Status == StatusAccepted
}
