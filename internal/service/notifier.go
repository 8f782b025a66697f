package service

// Notifier fans document events out to whoever is listening (the websocket
// hub in the reference deployment). Dispatch is best effort: a dropped or
// failed notification never affects the mutation that triggered it.
type Notifier interface {
	Publish(event map[string]interface{})
}
