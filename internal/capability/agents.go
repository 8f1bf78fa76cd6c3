package capability

import (
	"time"

	"github.com/jmylchreest/smartscreen/internal/connection"
)

// AlertState is the lifecycle of an alert.
type AlertState uint8

const (
	AlertReady AlertState = iota
	AlertStarted
	AlertStopped
	AlertSnoozed
	AlertCompleted
)

// AlertsObserver receives alert state changes.
type AlertsObserver interface {
	OnAlertStateChange(token string, state AlertState, reason string)
}

// Alerts manages timers, alarms and reminders.
type Alerts interface {
	Agent
	Subject[AlertsObserver]
	OnLocalStop()
}

// IndicatorState is the notification indicator.
type IndicatorState uint8

const (
	IndicatorOff IndicatorState = iota
	IndicatorOn
)

// NotificationsObserver receives indicator changes.
type NotificationsObserver interface {
	OnSetIndicator(state IndicatorState)
}

// Notifications tracks pending notifications.
type Notifications interface {
	Agent
	Subject[NotificationsObserver]
}

// PresentationObserver receives visual document lifecycle events.
type PresentationObserver interface {
	OnRenderDocument(token, document string)
	OnClearDocument(token string)
}

// ActivityEvent is a user interaction with a rendered document.
type ActivityEvent uint8

const (
	ActivityActivated ActivityEvent = iota
	ActivityDeactivated
	ActivityOneTime
	ActivityInterrupt
)

// RenderingEvent is a timing mark reported by the document renderer.
type RenderingEvent uint8

const (
	RenderInflateBegin RenderingEvent = iota
	RenderInflateEnd
	RenderTextMeasure
)

// String returns a human-readable event name.
func (e RenderingEvent) String() string {
	switch e {
	case RenderInflateBegin:
		return "INFLATE_BEGIN"
	case RenderInflateEnd:
		return "INFLATE_END"
	case RenderTextMeasure:
		return "TEXT_MEASURE"
	default:
		return "UNKNOWN"
	}
}

// Presentation renders visual documents.
type Presentation interface {
	Agent
	Subject[PresentationObserver]
	DialogStateObserver
	SetMaxVersion(version string)
	ClearCard()
	ClearExecuteCommands(token string)
	SendUserEvent(payload string)
	SendDataSourceFetchRequest(kind, payload string)
	SendRuntimeError(payload string)
	OnVisualContextAvailable(requestID uint32, context string)
	ProcessRenderDocumentResult(token string, ok bool, reason string)
	ProcessExecuteCommandsResult(token string, ok bool, reason string)
	ProcessActivityEvent(source string, event ActivityEvent)
	SetDocumentIdleTimeout(timeout time.Duration)
	SetWindowState(payload string)
	RecordRenderComplete()
	RecordDropFrameCount(count uint64)
	RecordEvent(event RenderingEvent)
}

// TemplateRuntimeObserver receives display card events.
type TemplateRuntimeObserver interface {
	OnRenderTemplateCard(payload string, focus FocusState)
	OnClearTemplateCard()
	OnRenderPlayerInfoCard(payload string, focus FocusState)
	OnClearPlayerInfoCard()
}

// TemplateRuntime renders display cards.
type TemplateRuntime interface {
	Agent
	Subject[TemplateRuntimeObserver]
	DialogStateObserver
	PresentationObserver
	ClearCard()
}

// DoNotDisturb holds the do-not-disturb setting in sync with the service.
type DoNotDisturb interface {
	Agent
	connection.StatusObserver
}

// CallState is the comms call state.
type CallState uint8

const (
	CallIdle CallState = iota
	CallConnecting
	CallInbound
	CallActive
	CallEnded
)

// CallStateObserver receives comms call state changes.
type CallStateObserver interface {
	OnCallStateChange(state CallState)
}

// CallManager handles voice calls.
type CallManager interface {
	Agent
	Subject[CallStateObserver]
	connection.StatusObserver
	AcceptCall()
	SendDTMF(tone string)
	StopCall()
}

// MultiRoomMusic plays music across device groups.
type MultiRoomMusic interface {
	Agent
	CallStateObserver
}

// BluetoothDeviceObserver receives bluetooth device connections.
type BluetoothDeviceObserver interface {
	OnBluetoothDeviceChanged(address string, connected bool)
}

// Bluetooth manages paired devices.
type Bluetooth interface {
	Agent
	Subject[BluetoothDeviceObserver]
}

// BluetoothDeviceManager enumerates the host's bluetooth devices.
type BluetoothDeviceManager interface {
	Devices() []string
}

// RevokeAuthorizationObserver is told when the service revokes the device.
type RevokeAuthorizationObserver interface {
	OnRevokeAuthorization()
}

// RevokeAuthorization handles authorization revocation.
type RevokeAuthorization interface {
	Agent
	Subject[RevokeAuthorizationObserver]
}

// Captions renders captions for speech output.
type Captions interface {
	Shutdowner
}

// FirmwareVersion is the device firmware version. Valid versions are
// positive.
type FirmwareVersion int32

// Valid reports whether v may be reported to the service.
func (v FirmwareVersion) Valid() bool {
	return v > 0
}

// SoftwareInfoObserver is told how the service handled a firmware report.
type SoftwareInfoObserver interface {
	OnFirmwareVersionAccepted(v FirmwareVersion)
}

// SoftwareInfoSender reports the firmware version to the service.
type SoftwareInfoSender interface {
	Shutdowner
	SetFirmwareVersion(v FirmwareVersion) bool
}

// SettingsManager owns device settings.
type SettingsManager interface {
	Setting(name string) (string, bool)
	SetSetting(name, value string) bool
}

// RegistrationManager logs the device out and clears customer data.
type RegistrationManager interface {
	Logout()
}
