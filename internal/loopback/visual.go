package loopback

import (
	"strconv"
	"sync"
	"time"

	"github.com/jmylchreest/smartscreen/internal/capability"
)

// Presentation records every document call.
type Presentation struct {
	*Observable[capability.PresentationObserver]

	mu          sync.Mutex
	maxVersion  string
	dialog      capability.DialogState
	idleTimeout time.Duration
	windowState string
}

// NewPresentation returns a presentation agent.
func NewPresentation(rec *Recorder) *Presentation {
	return &Presentation{
		Observable: newObservable[capability.PresentationObserver](rec, "presentation", "Alexa.Presentation.APL", "1.4"),
	}
}

// SetMaxVersion records the supported document version.
func (p *Presentation) SetMaxVersion(version string) {
	p.record("setMaxVersion:" + version)
	p.mu.Lock()
	p.maxVersion = version
	p.mu.Unlock()
}

// MaxVersion returns the supported document version.
func (p *Presentation) MaxVersion() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxVersion
}

// OnDialogStateChanged records the dialog state.
func (p *Presentation) OnDialogStateChanged(state capability.DialogState) {
	p.mu.Lock()
	p.dialog = state
	p.mu.Unlock()
}

// DialogState returns the last dialog state seen.
func (p *Presentation) DialogState() capability.DialogState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dialog
}

// Render simulates a document arriving from the service.
func (p *Presentation) Render(token, document string) {
	p.Notify(func(o capability.PresentationObserver) { o.OnRenderDocument(token, document) })
}

// ClearCard clears the current document.
func (p *Presentation) ClearCard() {
	p.record("clearCard")
	p.Notify(func(o capability.PresentationObserver) { o.OnClearDocument("") })
}

// ClearExecuteCommands records the call.
func (p *Presentation) ClearExecuteCommands(token string) { p.record("clearExecuteCommands:" + token) }

// SendUserEvent records the call.
func (p *Presentation) SendUserEvent(string) { p.record("sendUserEvent") }

// SendDataSourceFetchRequest records the call.
func (p *Presentation) SendDataSourceFetchRequest(kind, _ string) {
	p.record("sendDataSourceFetchRequest:" + kind)
}

// SendRuntimeError records the call.
func (p *Presentation) SendRuntimeError(string) { p.record("sendRuntimeError") }

// OnVisualContextAvailable records the call.
func (p *Presentation) OnVisualContextAvailable(uint32, string) { p.record("visualContext") }

// ProcessRenderDocumentResult records the call.
func (p *Presentation) ProcessRenderDocumentResult(token string, _ bool, _ string) {
	p.record("renderDocumentResult:" + token)
}

// ProcessExecuteCommandsResult records the call.
func (p *Presentation) ProcessExecuteCommandsResult(token string, _ bool, _ string) {
	p.record("executeCommandsResult:" + token)
}

// ProcessActivityEvent records the call.
func (p *Presentation) ProcessActivityEvent(source string, _ capability.ActivityEvent) {
	p.record("activityEvent:" + source)
}

// SetDocumentIdleTimeout records the timeout.
func (p *Presentation) SetDocumentIdleTimeout(timeout time.Duration) {
	p.record("setDocumentIdleTimeout")
	p.mu.Lock()
	p.idleTimeout = timeout
	p.mu.Unlock()
}

// SetWindowState records the window layout.
func (p *Presentation) SetWindowState(payload string) {
	p.record("setWindowState")
	p.mu.Lock()
	p.windowState = payload
	p.mu.Unlock()
}

// WindowState returns the last window layout.
func (p *Presentation) WindowState() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.windowState
}

// RecordRenderComplete records the call.
func (p *Presentation) RecordRenderComplete() { p.record("renderComplete") }

// RecordDropFrameCount records the call.
func (p *Presentation) RecordDropFrameCount(count uint64) {
	p.record("dropFrameCount:" + strconv.FormatUint(count, 10))
}

// RecordEvent records the call.
func (p *Presentation) RecordEvent(event capability.RenderingEvent) {
	p.record("renderingEvent:" + event.String())
}

// IdleTimeout returns the document idle timeout.
func (p *Presentation) IdleTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idleTimeout
}

// TemplateRuntime records cards and follows documents.
type TemplateRuntime struct {
	*Observable[capability.TemplateRuntimeObserver]

	mu       sync.Mutex
	dialog   capability.DialogState
	document string
}

// NewTemplateRuntime returns a template runtime.
func NewTemplateRuntime(rec *Recorder) *TemplateRuntime {
	return &TemplateRuntime{
		Observable: newObservable[capability.TemplateRuntimeObserver](rec, "template-runtime", "TemplateRuntime", "1.2"),
	}
}

// OnDialogStateChanged records the dialog state.
func (t *TemplateRuntime) OnDialogStateChanged(state capability.DialogState) {
	t.mu.Lock()
	t.dialog = state
	t.mu.Unlock()
}

// OnRenderDocument tracks the active document.
func (t *TemplateRuntime) OnRenderDocument(token, _ string) {
	t.mu.Lock()
	t.document = token
	t.mu.Unlock()
}

// OnClearDocument forgets the active document.
func (t *TemplateRuntime) OnClearDocument(string) {
	t.mu.Lock()
	t.document = ""
	t.mu.Unlock()
}

// Document returns the active document token.
func (t *TemplateRuntime) Document() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.document
}

// ClearCard clears the display card.
func (t *TemplateRuntime) ClearCard() {
	t.record("clearCard")
	t.Notify(func(o capability.TemplateRuntimeObserver) { o.OnClearTemplateCard() })
}
