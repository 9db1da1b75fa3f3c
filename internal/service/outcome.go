package service

import "github.com/campushq/events-api/internal/lifecycle"

// Outcome is the structured result of a lifecycle transition. Expected
// business rejections (already completed, phase closed, missing
// prerequisite, capacity) are reported here rather than raised as errors so
// callers can render the specific reason; only store failures and other
// unexpected conditions travel the error path.
type Outcome struct {
	OK      bool   `json:"ok"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func granted(id, message string) Outcome {
	return Outcome{OK: true, ID: id, Message: message}
}

func rejected(code, message string) Outcome {
	return Outcome{Code: code, Message: message}
}

// rejectedWithID reports a benign duplicate along with the identifier minted
// by the original call.
func rejectedWithID(code, id, message string) Outcome {
	return Outcome{Code: code, ID: id, Message: message}
}

func fromCheck(check lifecycle.Check) Outcome {
	return rejected(check.Code, check.Reason)
}
