package mail

// Payload is one outbound plain text message.
type Payload struct {
	To      string
	Subject string
	Body    string
}
