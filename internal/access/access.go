// Package access decides what a requester may do with a post. Every owner
// comparison in the service goes through IsOwner.
package access

import (
	"errors"

	"photogenie/internal/auth"
	"photogenie/internal/models"
)

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

// IsOwner reports whether requester published post. A nil requester is
// anonymous and owns nothing.
func IsOwner(post *models.Post, requester *auth.AppClaims) bool {
	if post == nil || requester == nil {
		return false
	}
	return post.PublishedBy.ID == requester.UserID
}

// CanModify gates update and delete.
func CanModify(post *models.Post, requester *auth.AppClaims) error {
	if requester == nil {
		return ErrUnauthenticated
	}
	if !IsOwner(post, requester) {
		return ErrForbidden
	}
	return nil
}

// CountsAsView reports whether retrieving post should bump its view counter.
func CountsAsView(post *models.Post, requester *auth.AppClaims) bool {
	return !IsOwner(post, requester)
}
