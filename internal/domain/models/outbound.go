package models

// OutboundMessageRequest is an operator request to push a message through the API.
// An empty To sends to the configured farm recipient.
type OutboundMessageRequest struct {
	To         string `json:"to"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// AutomationReply describes one entry of the command help.
type AutomationReply struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
