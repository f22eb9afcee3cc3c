package response

// Envelope wraps every JSON answer: data on success, message on failure.
type Envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
}

func OK(data any) Envelope {
	if data == nil {
		data = struct{}{}
	}
	return Envelope{Success: true, StatusCode: CodeOK, Data: data}
}

// Error builds a failure envelope; an empty msg falls back to the status text.
func Error(code int, msg string) Envelope {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	if msg == "" {
		msg = "Internal Server Error"
	}
	return Envelope{Success: false, StatusCode: code, Message: msg}
}
