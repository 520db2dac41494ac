package model

// PasswordState is the complete state of the password widget.
type PasswordState struct {
	Length       int               `json:"length"`
	Options      GenerationOptions `json:"options"`
	Password     string            `json:"password"`
	Notification string            `json:"notification"`
}

// Change identifies what a state mutation did.
type Change string

const (
	ChangeLength       Change = "length"
	ChangeOptions      Change = "options"
	ChangeGenerated    Change = "generated"
	ChangeNotification Change = "notification"
)
