package ez

import "net/http"

// AErr carries an explicit status code. Msg is shown to the client; Err is
// kept for logs only.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: http.StatusNotFound, Msg: msg} }
func Unavailable(msg string, err error) error {
	return &AErr{Code: http.StatusServiceUnavailable, Msg: msg, Err: err}
}
func Internal(msg string, err error) error {
	return &AErr{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}
