package model

import gonanoid "github.com/matoous/go-nanoid/v2"

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewID generates a random 16 character document ID. Collisions at this
// length are not a practical concern for a single database.
func NewID() (string, error) {
	return gonanoid.Generate(idCharset, 16)
}
