package domain

// Sender identifies who wrote a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry of the chat transcript.
type ChatMessage struct {
	Sender Sender
	Text   string
}

// ChatRequest is the body POSTed to the chatbot endpoint.
type ChatRequest struct {
	Message  string `json:"message" validate:"required"`
	Language string `json:"language" validate:"required"`
}

// ChatReply is the chatbot endpoint's response.
type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
}
