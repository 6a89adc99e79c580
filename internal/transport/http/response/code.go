package response

import "net/http"

// Statuses used by this API. There is no 403: role failures are 401.
const (
	CodeOK           = http.StatusOK
	CodeCreated      = http.StatusCreated
	CodeBadRequest   = http.StatusBadRequest
	CodeUnauthorized = http.StatusUnauthorized
	CodeNotFound     = http.StatusNotFound
	CodeTooMany      = http.StatusTooManyRequests
	CodeServerError  = http.StatusInternalServerError
	CodeUnavailable  = http.StatusServiceUnavailable
	CodeTimeout      = http.StatusGatewayTimeout
)

// CodeMsgMap holds the default message for each status.
var CodeMsgMap = map[int]string{
	CodeOK:           "OK",
	CodeCreated:      "Created",
	CodeBadRequest:   "Bad request",
	CodeUnauthorized: "Not authorized",
	CodeNotFound:     "Not found",
	CodeTooMany:      "Too many requests",
	CodeServerError:  "Internal error",
	CodeUnavailable:  "Server busy",
	CodeTimeout:      "Request timed out",
}
