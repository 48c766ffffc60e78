package messages

import "github.com/slack-go/slack"

// Section is a block with a bold header and one markdown field per body line.
type Section struct {
	Header string
	Body   []string
}

func (s Section) block() *slack.SectionBlock {
	var header *slack.TextBlockObject
	if s.Header != "" {
		header = slack.NewTextBlockObject(slack.MarkdownType, "*"+s.Header+"*", false, false)
	}
	var fields []*slack.TextBlockObject
	for _, line := range s.Body {
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, line, false, false))
	}
	return slack.NewSectionBlock(header, fields, nil)
}

// Message is a text message with optional sections. Text is always sent: Slack shows it in notifications
// and in clients that can't render blocks.
type Message struct {
	Text     string
	Sections []Section
}

func (m Message) blocks() []slack.Block {
	if len(m.Sections) == 0 {
		return nil
	}
	blocks := make([]slack.Block, len(m.Sections))
	for i, s := range m.Sections {
		blocks[i] = s.block()
	}
	return blocks
}

func (m Message) msgOptions() []slack.MsgOption {
	options := []slack.MsgOption{slack.MsgOptionText(m.Text, false)}
	if blocks := m.blocks(); len(blocks) > 0 {
		options = append(options, slack.MsgOptionBlocks(blocks...))
	}
	return options
}

func (m Message) webhookMessage() *slack.WebhookMessage {
	msg := slack.WebhookMessage{Text: m.Text}
	if blocks := m.blocks(); len(blocks) > 0 {
		msg.Blocks = &slack.Blocks{BlockSet: blocks}
	}
	return &msg
}
