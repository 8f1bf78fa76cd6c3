package client

import (
	"fmt"

	"github.com/jmylchreest/smartscreen/internal/capability"
)

type step struct {
	name string
	run  func() error
}

func shut(name string, s capability.Shutdowner) step {
	if s == nil {
		return step{name: name}
	}
	return step{name: name, run: func() error {
		s.Shutdown()
		return nil
	}}
}

// shutdownSteps is the teardown order. Every step first detaches the wiring
// edges that touch its component, so no observer is left registered with a
// subject that is being shut down.
func (c *Client) shutdownSteps() []step {
	p := c.parts
	return []step{
		{name: nameClient},
		shut(nameSequencer, p.Sequencer),
		shut(nameSpeakerManager, p.SpeakerManager),
		shut(namePresentation, p.Presentation),
		shut(nameTemplateRuntime, p.TemplateRuntime),
		shut(nameRecognizer, p.Recognizer),
		shut(nameAudioPlayer, p.AudioPlayer),
		shut(nameExternalMediaPlayer, p.ExternalMediaPlayer),
		shut(nameSpeechSynthesizer, p.SpeechSynthesizer),
		shut(nameAlerts, p.Alerts),
		shut(namePlaybackController, p.PlaybackController),
		c.softwareInfoStep(),
		c.gateStep(),
		shut(nameRouter, p.Router),
		shut(nameCertifiedSender, p.CertifiedSender),
		shut(nameExceptionSender, p.ExceptionSender),
		shut(nameAudioActivityTracker, p.AudioActivityTracker),
		shut(nameVisualActivityTracker, p.VisualActivityTracker),
		shut(namePlaybackRouter, p.PlaybackRouter),
		shut(nameNotifications, p.Notifications),
		shut(nameInteractionModel, p.InteractionModel),
		shut(nameCaptions, p.Captions),
		shut(nameBluetooth, p.Bluetooth),
		shut(nameUserInactivityMonitor, p.UserInactivityMonitor),
		shut(nameMultiRoomMusic, p.MultiRoomMusic),
		shut(nameCallManager, p.CallManager),
		shut(nameAPIGateway, p.APIGateway),
		shut(nameInterfaceAgent, p.InterfaceAgent),
		shut(namePhoneCallController, p.PhoneCallController),
		shut(nameMeetingClientController, p.MeetingClientController),
		shut(nameDoNotDisturb, p.DoNotDisturb),
		shut(nameVisualCharacteristics, p.VisualCharacteristics),
		{name: nameEqualizerController},
		shut(nameEqualizer, p.Equalizer),
		shut(nameRevokeAuthorization, p.RevokeAuthorization),
		c.systemHandlersStep(),
		c.coordinatorStep(),
		c.settingsStorageStep(),
	}
}

func (c *Client) gateStep() step {
	if c.parts.Gate == nil {
		return step{name: nameGate}
	}
	return shut(nameGate, c.parts.Gate)
}

func (c *Client) softwareInfoStep() step {
	holder := c.softwareInfo.Load()
	if holder == nil {
		return step{name: nameSoftwareInfoSender}
	}
	return shut(nameSoftwareInfoSender, holder.sender)
}

func (c *Client) systemHandlersStep() step {
	handlers := c.parts.SystemHandlers
	if len(handlers) == 0 {
		return step{name: nameSystemHandlers}
	}
	return step{name: nameSystemHandlers, run: func() error {
		for _, h := range handlers {
			if h != nil {
				h.Shutdown()
			}
		}
		return nil
	}}
}

func (c *Client) coordinatorStep() step {
	if c.coordinator == nil {
		return step{name: nameEndpointCoordinator}
	}
	return step{name: nameEndpointCoordinator, run: func() error {
		c.coordinator.Close()
		return nil
	}}
}

func (c *Client) settingsStorageStep() step {
	if !c.settingsOpen {
		return step{name: nameDeviceSettingStorage}
	}
	return step{name: nameDeviceSettingStorage, run: func() error {
		if err := c.env.Request.Storage.DeviceSettings.Close(); err != nil {
			return fmt.Errorf("failed to close device setting storage: %w", err)
		}
		return nil
	}}
}

// ShutdownOrder returns the names of the teardown steps in order.
func (c *Client) ShutdownOrder() []string {
	steps := c.shutdownSteps()
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}
	return names
}

// Close shuts the client down. Every step runs even if an earlier one
// fails; failures are logged. Calling Close again does nothing.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.logger.Info("shutting down client")
		c.teardown()
		c.logger.Info("client shut down")
	})
}

func (c *Client) teardown() {
	for _, s := range c.shutdownSteps() {
		c.runStep(s)
	}
}

func (c *Client) runStep(s step) {
	if n := c.wiring.DetachTouching(s.name); n > 0 {
		c.logger.Debug("detached observers", "step", s.name, "edges", n)
	}
	if s.run == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("shutdown step failed", "step", s.name, "reason", "shutdownStepPanicked", "panic", r)
		}
	}()
	if err := s.run(); err != nil {
		c.logger.Error("shutdown step failed", "step", s.name, "reason", "shutdownStepFailed", "error", err)
	}
}
