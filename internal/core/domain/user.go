package domain

import (
	"errors"
	"time"
)

// MaxPinnedChats caps how many conversations a user may pin at once.
const MaxPinnedChats = 2

// NotificationKind identifies the event a notification describes.
type NotificationKind string

const (
	NotificationFriendRequest  NotificationKind = "friend_request"
	NotificationFriendAccepted NotificationKind = "friend_accepted"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAlreadyFriends = errors.New("users are already friends")
var ErrNotFriends = errors.New("users are not friends")
var ErrDuplicateRequest = errors.New("friend request already pending")
var ErrRequestNotFound = errors.New("friend request not found")
var ErrAlreadyPinned = errors.New("chat already pinned")
var ErrPinLimitExceeded = errors.New("pinned chat limit reached")
var ErrSelfAction = errors.New("operation cannot target the caller")

// FriendRequest is a pending inbound request stored on the receiving user.
// A user holds at most one pending request per distinct sender.
type FriendRequest struct {
	From      string    `json:"from" bson:"from"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Notification is a single entry in a user's notification feed. Entries are
// append-only; the only mutation this core performs is the read-flag flip.
type Notification struct {
	Kind      NotificationKind `json:"kind" bson:"kind"`
	From      string           `json:"from" bson:"from"`
	Read      bool             `json:"read" bson:"read"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}

// User is the directory document for a single account.
//
// Friendship is symmetric: whenever b appears in a.Friends, a must appear in
// b.Friends. The same pairing rule applies to LastInteraction entries. Those
// invariants are maintained by the repository through conditional multi-
// document writes, never by rewriting whole documents in memory.
type User struct {
	ID              string               `json:"id" bson:"_id,omitempty"`
	Name            string               `json:"name" bson:"name"`
	Email           string               `json:"email" bson:"email"`
	PasswordHash    string               `json:"-" bson:"password_hash"`
	Avatar          string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Friends         []string             `json:"friends" bson:"friends"`
	PinnedChats     []string             `json:"pinned_chats" bson:"pinned_chats"`
	LastInteraction map[string]time.Time `json:"last_interaction" bson:"last_interaction"`
	FriendRequests  []FriendRequest      `json:"friend_requests" bson:"friend_requests"`
	Notifications   []Notification       `json:"notifications" bson:"notifications"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
}

// IsFriend reports whether id is in the user's friend set.
func (u *User) IsFriend(id string) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// HasPendingRequestFrom reports whether a pending request from id exists.
func (u *User) HasPendingRequestFrom(id string) bool {
	for _, r := range u.FriendRequests {
		if r.From == id {
			return true
		}
	}
	return false
}

// IsPinned reports whether id is in the user's pinned chat list.
func (u *User) IsPinned(id string) bool {
	for _, p := range u.PinnedChats {
		if p == id {
			return true
		}
	}
	return false
}

// Profile is the subset of user fields safe to expose to other users.
// Credential material never crosses this boundary.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// Public returns the user's shareable profile.
func (u *User) Public() Profile {
	return Profile{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
	}
}
