package album

import "errors"

var (
	// ErrAlbumNotFound indicates the requested album does not exist for the user.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrAlbumNameExists is returned when a user attempts to create a duplicate album name.
	ErrAlbumNameExists = errors.New("album name already exists")
)
