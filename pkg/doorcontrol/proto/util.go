package proto

import "fmt"

func MustRegisterMessage(v interface{}) (*RegisterMessage, error) {
	msg, ok := v.(RegisterMessage)
	if !ok {
		return nil, fmt.Errorf("not a register message")
	}

	return &msg, nil
}

func MustFeedbackMessage(v interface{}) (*FeedbackMessage, error) {
	msg, ok := v.(FeedbackMessage)
	if !ok {
		return nil, fmt.Errorf("not a feedback message")
	}

	return &msg, nil
}

type AbortMessageDetails struct {
	Message string `json:"message"`
}

func NewAbortMessageDetails(message string) *AbortMessageDetails {
	return &AbortMessageDetails{
		Message: message,
	}
}

// RegisterMessageDetails are the provisioning details a device may attach
// to its register message.
type RegisterMessageDetails struct {
	ChipID string `json:"chip_id,omitempty"`
	IP     string `json:"ip,omitempty"`
}

// ParseRegisterDetails extracts the known provisioning fields from the
// generic details dictionary of a register message.
func ParseRegisterDetails(v interface{}) RegisterMessageDetails {
	out := RegisterMessageDetails{}

	dict, ok := v.(map[string]interface{})
	if !ok {
		return out
	}

	if chipID, ok := dict["chip_id"].(string); ok {
		out.ChipID = chipID
	}
	if ip, ok := dict["ip"].(string); ok {
		out.IP = ip
	}

	return out
}
