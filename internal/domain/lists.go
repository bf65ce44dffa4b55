package domain

// WordList names a persisted set of words kept by the client.
type WordList string

const (
	ListHistory    WordList = "history"
	ListFavourites WordList = "favourites"
)

func (l WordList) String() string { return string(l) }

func (l WordList) IsValid() bool {
	switch l {
	case ListHistory, ListFavourites:
		return true
	}
	return false
}
