package rest

import (
	"fmt"
	"net/http"

	"github.com/milan604/restkit/pkg/apperr"
	"github.com/milan604/restkit/pkg/errors"
	"github.com/milan604/restkit/pkg/media"
)

const (
	transportFailureFormat = "an error occurred while sending the request: %v"
	ambiguousFormat        = "response body could not be parsed as the expected type: %s"
	statusFailureFormat    = "request failed with status code %d (%s)"
)

// Captured turns a transport failure into a Response. The status code stays 0.
func Captured[TS, TF any](err error) Response[TS, TF] {
	return Response[TS, TF]{
		ErrorMessage: fmt.Sprintf(transportFailureFormat, err),
		Err:          errors.Wrap(err, "send request"),
	}
}

// Classify interprets a received status and body.
//
//   - 2xx: a non-empty body is decoded into TS; if that fails the response is
//     ambiguous. An empty body sets nothing.
//   - 400 with a body: the body is decoded into TF. A decode failure is
//     returned as a failure_decode error next to the partially filled response.
//   - anything else: ErrorMessage names the status, the body is not parsed.
func Classify[TS, TF any](status int, raw string, accept media.Type) (Response[TS, TF], error) {
	r := Response[TS, TF]{StatusCode: status, RawBody: raw}

	switch {
	case status >= 200 && status < 300:
		if raw == "" {
			return r, nil
		}
		v, err := media.Deserialize[TS](raw, accept)
		if err != nil {
			r.Ambiguous = true
			r.ErrorMessage = fmt.Sprintf(ambiguousFormat, raw)
			return r, nil
		}
		r.Success = &v
		return r, nil

	case status == http.StatusBadRequest && raw != "":
		v, err := media.Deserialize[TF](raw, accept)
		if err != nil {
			r.ErrorMessage = statusMessage(status)
			return r, apperr.Wrapf(apperr.ErrorCodeFailureDecode, err, "decode %d response body", status).WithStatus(status)
		}
		r.Failure = &v
		return r, nil

	default:
		r.ErrorMessage = statusMessage(status)
		return r, nil
	}
}

func statusMessage(status int) string {
	return fmt.Sprintf(statusFailureFormat, status, http.StatusText(status))
}
