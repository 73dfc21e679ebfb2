package game

import "time"

const (
	TickInterval     = 250 * time.Millisecond // one animation frame step
	ConfirmDelay     = time.Second            // step-on to traversal check
	ControllerWarmup = time.Second            // first phase evaluation after create/restore
	OpenThreshold    = 4 * time.Second        // minimum phase time left to open a gate
	SafetyMargin     = 2 * time.Second        // gate closes this long before the phase ends
	MinRearm         = time.Second
	MurderThreshold  = 5
	UseRange         = 1
	PhaseCount       = 8
	OpenFrame        = 8 // fully open, interactive frame index
	FrameCount       = OpenFrame + 1
)

// Sounds and cliloc numbers sent to actors.
const (
	SoundTranslocate = 0x1FE
	SoundConfirm     = 0x20E

	ClilocSigil       = 1061632
	ClilocYoung       = 1049543
	ClilocForbidden   = 1019004
	ClilocBusy        = 1049616
	ClilocTooFarAway  = 500446
	MessageNowhere    = "This moongate does not seem to go anywhere."
	MessageSigil      = "You can't do that while carrying the sigil."
	MessageYoung      = "You decide against traveling to Felucca while you are still young."
	MessageForbidden  = "You are not allowed to travel there."
	MessageBusy       = "You are too busy to do that at the moment."
	MessageTooFarAway = "That is too far away."
)
