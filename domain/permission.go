package domain

// Permission rules are pure decisions over membership facts.
// A nil membership means the user does not belong to the room.

func CanSend(m *Membership) bool {
	return m != nil
}

func CanEdit(msg Message, userID UserID) bool {
	return msg.AuthorID == userID
}

func CanDelete(msg Message, userID UserID, m *Membership) bool {
	return msg.AuthorID == userID || (m != nil && m.IsAdmin())
}

func CanAdministerRoom(m *Membership) bool {
	return m != nil && m.IsAdmin()
}

func CanReadRoom(room Room, m *Membership) bool {
	return room.IsPublic() || m != nil
}
