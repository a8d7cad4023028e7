package broker

import "encoding/json"

// Key identifies one logical operation, e.g. the beatmap md5 or numeric id
// being fetched. Submissions sharing a key share executions.
type Key string

// Session identifies the submitter whose output mailbox receives results.
type Session string

// Status is the outcome class of an execution.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failure"
}

// MarshalJSON encodes the status under its wire name.
func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

// UnmarshalJSON accepts the wire names produced by MarshalJSON.
func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == "success" {
		*s = StatusSuccess
	} else {
		*s = StatusFailure
	}
	return nil
}

// Result is the immutable outcome of one execution, fanned out to every
// session that was waiting on the key.
type Result struct {
	Key     Key    `json:"key"`
	Status  Status `json:"status"`
	Payload any    `json:"payload,omitempty"`
	Err     string `json:"error,omitempty"`
}

// Success builds a success result carrying payload.
func Success(key Key, payload any) Result {
	return Result{Key: key, Status: StatusSuccess, Payload: payload}
}

// Failure builds a failure result with a reason. Misses and faults both
// surface this way; submitters never see an execution error directly.
func Failure(key Key, reason string) Result {
	return Result{Key: key, Status: StatusFailure, Err: reason}
}
