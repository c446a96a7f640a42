package domain

type Identity struct {
	UserID string
	Email  string
	Role   string
}
