package client

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/smartscreen/internal/capability"
	"github.com/jmylchreest/smartscreen/internal/future"
)

// StopKeyword is the wake word that stops local activity while offline.
const StopKeyword = "stop"

// Trigger names used in logs and metrics.
const (
	triggerWakeWord      = "wakeword"
	triggerTapToTalk     = "tap"
	triggerHoldToTalk    = "hold"
	triggerHoldToTalkEnd = "hold_end"
	triggerTapToTalkEnd  = "tap_end"
)

// NotifyOfWakeWord starts a recognition for a detected wake word. While
// offline the stop keyword halts the foreground activity locally and every
// other keyword is ignored.
func (c *Client) NotifyOfWakeWord(
	provider capability.AudioProvider,
	begin, end capability.Index,
	keyword string,
	startOfSpeech time.Time,
	metadata []byte,
) *future.Future[bool] {
	if c.closed.Load() {
		return c.rejectClosed(triggerWakeWord)
	}

	id := ulid.Make().String()
	if !c.parts.Gate.IsConnected() {
		if keyword == StopKeyword {
			c.StopForegroundActivity()
			c.logger.Info("wake word handled locally", "interaction", id, "action", "localStop", "reason", "stopUtteredWhileNotConnected")
			c.metrics.interaction(triggerWakeWord, outcomeLocalStop)
			return future.Resolved(true)
		}
		c.logger.Info("wake word ignored", "interaction", id, "action", "ignoreWakeWord", "reason", "networkDisconnected", "keyword", keyword)
		c.metrics.interaction(triggerWakeWord, outcomeIgnored)
		return future.Resolved(false)
	}

	return c.recognize(id, triggerWakeWord, capability.RecognizeRequest{
		Provider:      provider,
		Initiator:     capability.InitiatorWakeword,
		StartOfSpeech: startOfSpeech,
		Begin:         begin,
		End:           end,
		Keyword:       keyword,
		Metadata:      metadata,
	})
}

// NotifyOfTapToTalk starts a tap-initiated recognition.
func (c *Client) NotifyOfTapToTalk(provider capability.AudioProvider, begin capability.Index, startOfSpeech time.Time) *future.Future[bool] {
	if c.closed.Load() {
		return c.rejectClosed(triggerTapToTalk)
	}
	return c.recognize(ulid.Make().String(), triggerTapToTalk, capability.RecognizeRequest{
		Provider:      provider,
		Initiator:     capability.InitiatorTap,
		StartOfSpeech: startOfSpeech,
		Begin:         begin,
		End:           capability.IndexUnspecified,
	})
}

// NotifyOfHoldToTalkStart starts a press-and-hold recognition.
func (c *Client) NotifyOfHoldToTalkStart(provider capability.AudioProvider, startOfSpeech time.Time) *future.Future[bool] {
	if c.closed.Load() {
		return c.rejectClosed(triggerHoldToTalk)
	}
	return c.recognize(ulid.Make().String(), triggerHoldToTalk, capability.RecognizeRequest{
		Provider:      provider,
		Initiator:     capability.InitiatorPressAndHold,
		StartOfSpeech: startOfSpeech,
		Begin:         capability.IndexUnspecified,
		End:           capability.IndexUnspecified,
	})
}

// NotifyOfHoldToTalkEnd stops a press-and-hold capture.
func (c *Client) NotifyOfHoldToTalkEnd() *future.Future[bool] {
	return c.stopCapture(triggerHoldToTalkEnd)
}

// NotifyOfTapToTalkEnd stops a tap-initiated capture.
func (c *Client) NotifyOfTapToTalkEnd() *future.Future[bool] {
	return c.stopCapture(triggerTapToTalkEnd)
}

func (c *Client) recognize(id, trigger string, req capability.RecognizeRequest) *future.Future[bool] {
	c.logger.Debug("starting recognition", "interaction", id, "trigger", trigger, "initiator", req.Initiator)
	c.metrics.interaction(trigger, outcomeDelegated)

	result := c.parts.Recognizer.Recognize(req)
	if result == nil {
		c.logger.Error("recognizer returned no result", "interaction", id, "reason", "nullRecognizeResult")
		return future.Resolved(false)
	}
	return result
}

func (c *Client) stopCapture(trigger string) *future.Future[bool] {
	if c.closed.Load() {
		return c.rejectClosed(trigger)
	}
	c.metrics.interaction(trigger, outcomeDelegated)

	result := c.parts.Recognizer.StopCapture()
	if result == nil {
		c.logger.Error("recognizer returned no result", "trigger", trigger, "reason", "nullStopCaptureResult")
		return future.Resolved(false)
	}
	return result
}

func (c *Client) rejectClosed(trigger string) *future.Future[bool] {
	c.logger.Warn("trigger ignored", "trigger", trigger, "reason", "clientClosed")
	c.metrics.interaction(trigger, outcomeIgnored)
	return future.Resolved(false)
}
