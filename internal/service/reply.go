package service

// MenuItem is one button of the /start menu: a label and the command it triggers.
type MenuItem struct {
	Label string
	Data  string
}

// Part is a single outbound chat message.
type Part struct {
	Text string
	Menu []MenuItem
}

// Reply is one logical answer. Its parts must reach the chat back to back.
type Reply struct {
	ChatID int64
	Parts  []Part
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return len(r.Parts) == 0
}

func textReply(chatID int64, lines ...string) Reply {
	parts := make([]Part, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, Part{Text: line})
	}
	return Reply{ChatID: chatID, Parts: parts}
}
