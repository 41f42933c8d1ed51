package handler

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSONResponse is the envelope of every JSON body.
type JSONResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes an error in a JSON body.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON renders v as the data of a JSON envelope. Errors are rendered as an
// error envelope with a matching status code.
func JSON(v any) Response {
	if err, ok := v.(error); ok {
		return JSONError(err)
	}
	return jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
}

// JSONError renders err as a JSON error envelope.
func JSONError(err error) Response {
	resp := jsonResponse{
		status: http.StatusInternalServerError,
		body: JSONResponse{Error: &ErrorDetail{
			Code:    "internal_error",
			Message: err.Error(),
		}},
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		resp.status = httpErr.Code
		resp.body.Error.Code = httpErr.Key
		resp.body.Error.Message = http.StatusText(httpErr.Code)
	}
	return resp
}
