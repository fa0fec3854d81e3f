package workflow

// Trigger represents an event that can cause a status transition
type Trigger string

const (
	TriggerGenerate   Trigger = "GENERATE"
	TriggerRegenerate Trigger = "REGENERATE"
	TriggerValidate   Trigger = "VALIDATE"
	TriggerSubmit     Trigger = "SUBMIT"
	TriggerAccept     Trigger = "ACCEPT"
	TriggerReject     Trigger = "REJECT"
	TriggerCancel     Trigger = "CANCEL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
