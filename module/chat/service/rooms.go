package service

import (
	"regexp"
	"strings"

	"chat-relay/module/chat/model"
	"chat-relay/tools/errs"
)

// RoomSeparator joins the two usernames of a private room. Usernames are
// validated at registration so the separator cannot appear inside them and
// no pair id can collide with the reserved public room literal.
const RoomSeparator = "_"

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9.-]{2,32}$`)

// CanonicalRoomID derives the private room id for two participants,
// independent of which side initiated: CanonicalRoomID(a, b) ==
// CanonicalRoomID(b, a) for all a != b.
func CanonicalRoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + RoomSeparator + b
}

// ValidateUsername rejects names that would break room identity: the
// separator, the reserved room literal, and anything outside the allowed
// charset.
func ValidateUsername(name string) error {
	if name == "" {
		return errs.ErrArgs.WithDetail("username is required")
	}
	if name == model.GeneralRoomID {
		return errs.ErrUsernameInvalid.WithDetail("reserved name")
	}
	if strings.Contains(name, RoomSeparator) {
		return errs.ErrUsernameInvalid.WithDetail("username may not contain " + RoomSeparator)
	}
	if !usernamePattern.MatchString(name) {
		return errs.ErrUsernameInvalid
	}
	return nil
}
