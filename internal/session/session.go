package session

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Mode string

const (
	ModeIdle    Mode = "idle"
	ModeStaging Mode = "staging"
	ModeEditing Mode = "editing"
)

// FormValue is the raw text of the amount field. It decodes from either a
// JSON string or a JSON number so form posts and API clients both work.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = FormValue(n.String())
	return nil
}

// Draft holds staged field values that have not been validated yet.
type Draft struct {
	Name     string    `json:"name"`
	Value    FormValue `json:"value"`
	Category string    `json:"category"`
}

func (d Draft) IsEmpty() bool {
	return strings.TrimSpace(d.Name) == "" &&
		strings.TrimSpace(string(d.Value)) == "" &&
		strings.TrimSpace(d.Category) == ""
}

// State is the EditSession. TargetID is only meaningful in ModeEditing.
type State struct {
	Mode     Mode  `json:"mode"`
	TargetID int64 `json:"targetId,omitempty"`
	Draft    Draft `json:"draft"`
}

func Idle() State {
	return State{Mode: ModeIdle}
}

func (s State) IsEditing() bool {
	return s.Mode == ModeEditing
}
