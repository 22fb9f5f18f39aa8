package messages

type createMessageRequest struct {
	RoomID    string `json:"roomId,omitempty"`
	From      string `json:"from"`
	Text      string `json:"text"`
	SignGloss string `json:"signGloss,omitempty"`
}
