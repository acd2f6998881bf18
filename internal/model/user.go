// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "encoding/json"

// User is a backend account. The locally cached instance is only ever
// replaced wholesale on re-authentication.
type User struct {
	ID            string  `json:"id"`
	Phone         string  `json:"phone"`
	DisplayName   string  `json:"display_name"`
	AvatarMediaID *string `json:"avatar_media_id,omitempty"`
}

// UnmarshalJSON decodes a User, requiring id, phone and display_name.
func (u *User) UnmarshalJSON(data []byte) error {
	var wire struct {
		ID            *string `json:"id"`
		Phone         *string `json:"phone"`
		DisplayName   *string `json:"display_name"`
		AvatarMediaID *string `json:"avatar_media_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var out User
	var err error
	if out.ID, err = required("User", "id", wire.ID); err != nil {
		return err
	}
	if out.Phone, err = required("User", "phone", wire.Phone); err != nil {
		return err
	}
	if out.DisplayName, err = required("User", "display_name", wire.DisplayName); err != nil {
		return err
	}
	out.AvatarMediaID = wire.AvatarMediaID

	*u = out
	return nil
}

// Equal reports whether two users carry identical fields.
func (u User) Equal(other User) bool {
	if u.ID != other.ID || u.Phone != other.Phone || u.DisplayName != other.DisplayName {
		return false
	}
	switch {
	case u.AvatarMediaID == nil && other.AvatarMediaID == nil:
		return true
	case u.AvatarMediaID == nil || other.AvatarMediaID == nil:
		return false
	default:
		return *u.AvatarMediaID == *other.AvatarMediaID
	}
}

// AuthResult is produced by a successful login and consumed immediately by
// the session store.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UnmarshalJSON decodes an AuthResult, requiring both token and user.
func (a *AuthResult) UnmarshalJSON(data []byte) error {
	var wire struct {
		Token *string `json:"token"`
		User  *User   `json:"user"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	token, err := required("AuthResult", "token", wire.Token)
	if err != nil {
		return err
	}
	user, err := required("AuthResult", "user", wire.User)
	if err != nil {
		return err
	}

	*a = AuthResult{Token: token, User: user}
	return nil
}
