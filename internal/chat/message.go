package chat

import (
	"time"

	"studyhub/client/internal/ids"
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type ContentKind string

const (
	KindText        ContentKind = "text"
	KindLoginPrompt ContentKind = "login-prompt"
)

// Content is a tagged variant so rendering can switch exhaustively on
// Kind instead of sniffing the payload.
type Content struct {
	Kind ContentKind `json:"kind"`
	Text string      `json:"text"`
}

func TextContent(text string) Content {
	return Content{Kind: KindText, Text: text}
}

func LoginPromptContent() Content {
	return Content{Kind: KindLoginPrompt, Text: msgLoginPrompt}
}

type Message struct {
	ID      string    `json:"id"`
	Sender  Sender    `json:"sender"`
	Content Content   `json:"content"`
	SentAt  time.Time `json:"sentAt"`
}

func newMessage(sender Sender, content Content) Message {
	return Message{
		ID:      ids.New(),
		Sender:  sender,
		Content: content,
		SentAt:  time.Now(),
	}
}

// Localized widget strings.
const (
	msgGreeting    = "Xin chào! Mình là trợ lý StudyHub. Mình có thể giúp gì cho bạn?"
	msgLoginPrompt = "Bạn cần đăng nhập để trò chuyện với trợ lý. Vui lòng đăng nhập nhé!"
	msgReplyError  = "Xin lỗi, đã có lỗi xảy ra. Vui lòng thử lại sau."
)

// QuickReplies are the pre-canned suggestions the widget offers while the
// user is signed in.
var QuickReplies = []string{
	"Xem điểm của tôi",
	"Tài liệu mới nhất",
	"Hướng dẫn tải tài liệu",
}
