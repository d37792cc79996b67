package models

// Author is either an identified user or anonymous.
// The zero value is Anonymous.
type Author struct {
	userID     ID
	identified bool
}

// IdentifiedAuthor returns an author bound to a user id.
func IdentifiedAuthor(userID ID) Author {
	return Author{userID: userID, identified: true}
}

// AnonymousAuthor returns an author without identity.
func AnonymousAuthor() Author {
	return Author{}
}

// AuthorFromColumn converts a nullable author column.
func AuthorFromColumn(col *ID) Author {
	if col == nil {
		return AnonymousAuthor()
	}
	return IdentifiedAuthor(*col)
}

// UserID reports the user id and whether the author is identified.
func (a Author) UserID() (ID, bool) {
	return a.userID, a.identified
}

// Column returns the nullable storage form.
func (a Author) Column() *ID {
	if !a.identified {
		return nil
	}
	id := a.userID
	return &id
}

// Is reports whether the author is the identified user id.
func (a Author) Is(userID ID) bool {
	return a.identified && a.userID.String() == userID.String()
}
