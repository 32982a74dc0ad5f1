package model

// Channel describes a Slack conversation visible to the bot.
type Channel struct {
	ID         string
	Name       string
	IsPrivate  bool
	IsMember   bool
	IsArchived bool
	NumMembers int
	Topic      string
	Purpose    string
}

// DeliveryResult is the outcome of a successful chat.postMessage call.
type DeliveryResult struct {
	Channel   string
	Timestamp string
}
