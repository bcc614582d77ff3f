package dto

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func NewErrorResponse(message string, code int) ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Message: message,
			Type:    "invalid_request_error",
			Code:    code,
		},
	}
}
