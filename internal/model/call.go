// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "encoding/json"

// CallJoin is the credential bundle returned by both call creation and
// call joining. It is handed as-is to a media room.
type CallJoin struct {
	CallID     string `json:"call_id"`
	Room       string `json:"room"`
	Token      string `json:"token"`
	LiveKitURL string `json:"livekit_url"`
}

// UnmarshalJSON decodes a CallJoin, requiring all four fields.
func (c *CallJoin) UnmarshalJSON(data []byte) error {
	var wire struct {
		CallID     *string `json:"call_id"`
		Room       *string `json:"room"`
		Token      *string `json:"token"`
		LiveKitURL *string `json:"livekit_url"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var out CallJoin
	var err error
	if out.CallID, err = required("CallJoin", "call_id", wire.CallID); err != nil {
		return err
	}
	if out.Room, err = required("CallJoin", "room", wire.Room); err != nil {
		return err
	}
	if out.Token, err = required("CallJoin", "token", wire.Token); err != nil {
		return err
	}
	if out.LiveKitURL, err = required("CallJoin", "livekit_url", wire.LiveKitURL); err != nil {
		return err
	}

	*c = out
	return nil
}
