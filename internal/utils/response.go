package utils

import "net/http"

// Response is the JSON envelope every API endpoint answers with. Status
// mirrors the HTTP status code; Data is null on errors.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func NewSuccessResponse(message string, data interface{}) Response {
	return Response{Status: http.StatusOK, Message: message, Data: data}
}

// NewCreatedResponse wraps a newly created resource.
func NewCreatedResponse(message string, data interface{}) Response {
	return Response{Status: http.StatusCreated, Message: message, Data: data}
}

func NewErrorResponse(status int, message string) Response {
	return Response{Status: status, Message: message}
}
