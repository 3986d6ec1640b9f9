package event

// NormalizeMessage builds a NormalizedMessage from a provider message payload.
// Every field is optional in the source: the text falls back from
// message.conversation through message.extendedTextMessage.text to a plain
// text field, and the contact name from pushName to name. The original data
// is preserved untouched under raw_data for downstream debugging.
func NormalizeMessage(data map[string]any) NormalizedMessage {
	from := FirstString(data,
		[]string{"from"},
		[]string{"key", "remoteJid"},
	)

	return NormalizedMessage{
		From: from,
		To:   StringAt(data, "to"),
		Message: MessageBody{
			ID: FirstString(data,
				[]string{"message", "id"},
				[]string{"key", "id"},
			),
			Text: FirstString(data,
				[]string{"message", "conversation"},
				[]string{"message", "extendedTextMessage", "text"},
				[]string{"text"},
			),
			Timestamp: FirstString(data,
				[]string{"message", "timestamp"},
				[]string{"messageTimestamp"},
				[]string{"timestamp"},
			),
			Type: FirstString(data,
				[]string{"message", "type"},
				[]string{"messageType"},
			),
		},
		Contact: ContactInfo{
			Name: FirstString(data,
				[]string{"pushName"},
				[]string{"name"},
			),
			Phone: from,
		},
		RawData: data,
	}
}
