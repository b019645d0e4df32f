package protocol

// Exchange is one completed round trip: the human input and the AI reply
// that answered it. Exchanges are values; once stored they are never edited.
type Exchange struct {
	Human string `json:"human" yaml:"human"`
	AI    string `json:"AI" yaml:"AI"`
}

// NewExchange pairs a human input with the reply it produced.
func NewExchange(human, ai string) Exchange {
	return Exchange{Human: human, AI: ai}
}

// Messages flattens the exchange into its two ordered units, human first.
func (e Exchange) Messages() [2]Message {
	return [2]Message{
		NewMessage(RoleHuman, e.Human),
		NewMessage(RoleAI, e.AI),
	}
}
