package domain

type MessageType string

const (
	MessageNotification    MessageType = "notification"
	MessageReminder        MessageType = "reminder"
	MessageAlert           MessageType = "alert"
	MessagePaymentReminder MessageType = "payment_reminder"
)

var MessageTypes = []MessageType{MessageNotification, MessageReminder, MessageAlert, MessagePaymentReminder}

func (t MessageType) Valid() bool {
	switch t {
	case MessageNotification, MessageReminder, MessageAlert, MessagePaymentReminder:
		return true
	}
	return false
}

// Message is an admin-to-client message as seen by the recipient.
type Message struct {
	Id          MessageId   `json:"id"`
	Content     string      `json:"content"`
	SendTime    Timestamp   `json:"send_time"`
	Status      string      `json:"status"`
	MessageType MessageType `json:"message_type"`
}
