package response

import "net/http"

// Status codes used by the envelope. They are the HTTP statuses themselves.
const (
	CodeOK           = http.StatusOK
	CodeBadRequest   = http.StatusBadRequest
	CodeUnauthorized = http.StatusUnauthorized
	CodeForbidden    = http.StatusForbidden
	CodeNotFound     = http.StatusNotFound
	CodeTooMany      = http.StatusTooManyRequests
	CodeServerError  = http.StatusInternalServerError
	CodeUnavailable  = http.StatusServiceUnavailable
	CodeTimeout      = http.StatusGatewayTimeout
)

var CodeMsgMap = map[int]string{
	CodeOK:           "OK",
	CodeBadRequest:   "Bad Request",
	CodeUnauthorized: "Unauthorized",
	CodeForbidden:    "Forbidden",
	CodeNotFound:     "Not Found",
	CodeTooMany:      "Too Many Requests",
	CodeServerError:  "Internal Server Error",
	CodeUnavailable:  "Service Unavailable",
	CodeTimeout:      "Gateway Timeout",
}
