package chat

// buildPayload assembles the outbound request body for one turn. history is
// the message list up to and including the user message, without the
// assistant placeholder.
//
// Text mode sends the whole history plus the user text under "chatInput",
// merged with any static extra fields. Events mode sends only the user text
// and the conversation's session id.
func (c *Conversation) buildPayload(history []Message, userMsg Message) map[string]any {
	if c.opts.BodyFunc != nil {
		return c.opts.BodyFunc(userMsg)
	}

	if c.opts.Mode == ModeEvents {
		return map[string]any{
			"chatInput": userMsg.Text(),
			"sessionId": c.sessionID,
		}
	}

	payload := map[string]any{
		"messages":  history,
		"chatInput": firstTextPart(userMsg),
	}
	for k, v := range c.opts.ExtraBody {
		payload[k] = v
	}
	return payload
}

func firstTextPart(m Message) string {
	for _, p := range m.Parts {
		if p.Type == PartText {
			return p.Text
		}
	}
	return ""
}
