package dto

import "encoding/json"

// ProfileResponse carries the institute profile document. FirstRun is true
// when nothing has been stored yet, which tells the UI to open in edit mode.
type ProfileResponse struct {
	Profile  json.RawMessage `json:"profile"`
	FirstRun bool            `json:"first_run"`
}
