package entity

// UserState is the position of a chat user in the verification dialog.
type UserState string

const (
	StateMainMenu          UserState = "main_menu"
	StateAwaitingReference UserState = "awaiting_reference" // waiting for the ID photo
	StateAwaitingProbe     UserState = "awaiting_probe"     // waiting for the live selfie
	StateProcessing        UserState = "processing"
)

// User is a bot user.
type User struct {
	ID     int64 // Telegram User ID
	ChatID int64 // Telegram Chat ID
	State  UserState
}

// NewUser creates a user in the main menu.
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState updates the dialog state.
func (u *User) SetState(state UserState) {
	u.State = state
}

// CanMoveTo reports whether the dialog allows going from s to next.
// A new verification or a cancel is allowed from anywhere.
func (s UserState) CanMoveTo(next UserState) bool {
	switch next {
	case StateMainMenu, StateAwaitingReference:
		return true
	case StateAwaitingProbe:
		return s == StateAwaitingReference
	case StateProcessing:
		return s == StateAwaitingProbe
	}
	return false
}

// InFlow reports whether the user is inside a verification dialog.
func (u *User) InFlow() bool {
	return u.State == StateAwaitingReference || u.State == StateAwaitingProbe || u.State == StateProcessing
}
