package rest

import (
	"net/http"
	"time"
)

// Response is the outcome of one exchange.
//
// At most one of Success and Failure is set. Ambiguous marks a 2xx reply
// whose body did not decode into TS; ErrorMessage then holds the raw body.
// Err holds a transport failure, in which case StatusCode is 0.
type Response[TS, TF any] struct {
	StatusCode   int
	RawBody      string
	Success      *TS
	Failure      *TF
	Ambiguous    bool
	ErrorMessage string
	Err          error

	Header   http.Header
	Duration time.Duration
}

// IsSuccessful reports whether the exchange completed with a 2xx status.
// An ambiguous 2xx reply is still successful at the HTTP level.
func (r Response[TS, TF]) IsSuccessful() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// IsTransportError reports whether no response was received.
func (r Response[TS, TF]) IsTransportError() bool {
	return r.Err != nil
}
