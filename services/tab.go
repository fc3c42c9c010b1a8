package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CrowderSoup/taskdesk/controller"
	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/CrowderSoup/taskdesk/rpc"
	"github.com/CrowderSoup/taskdesk/session"
	"github.com/sirupsen/logrus"
)

// Outbox receives encoded messages for the browser.
type Outbox interface {
	Deliver(msg []byte) bool
}

// EventData is the payload of an event message. Values carries the current
// value of every form field, keyed by node number.
type EventData struct {
	Node   uint64            `json:"node"`
	Type   string            `json:"type"`
	Values map[uint64]string `json:"values,omitempty"`
}

// RenderData is the payload of a render message.
type RenderData struct {
	HTML string `json:"html"`
}

// RedirectData is the payload of a redirect message.
type RedirectData struct {
	Path string `json:"path"`
}

// TabConfig describes one page opened in one browser tab.
type TabConfig struct {
	Page    string
	API     rpc.Service
	Storage session.Storage
	Options controller.Options
	Log     *logrus.Entry
}

// Tab is the server side of a browser tab: a document, its event loop and
// the controller bound to it. Everything touching the document runs on the
// loop.
type Tab struct {
	doc  *dom.Document
	loop *Loop
	ctrl *controller.Controller
	out  Outbox
	log  *logrus.Entry

	// lastHTML is only touched on the loop goroutine.
	lastHTML string
}

func NewTab(cfg TabConfig, out Outbox) (*Tab, error) {
	doc := dom.NewPage(cfg.Page)
	if doc == nil {
		return nil, fmt.Errorf("unknown page %q", cfg.Page)
	}

	log := cfg.Log.WithField("page", cfg.Page)
	t := &Tab{
		doc:  doc,
		loop: NewLoop(),
		out:  out,
		log:  log,
	}
	t.ctrl = controller.New(controller.Deps{
		API:       cfg.API,
		Session:   session.NewStore(cfg.Storage, log),
		Document:  doc,
		Loop:      t.loop,
		Navigator: t,
		Log:       log,
	}, cfg.Options)
	t.loop.AfterEach = t.flush

	return t, nil
}

// Run drives the tab's event loop until ctx is done.
func (t *Tab) Run(ctx context.Context) {
	t.loop.Run(ctx)
}

// Settle waits until the tab has no queued or in-flight work.
func (t *Tab) Settle() {
	t.loop.Settle()
}

// HandleMessage queues a browser message onto the loop.
func (t *Tab) HandleMessage(msg WebSocketMessage) {
	switch msg.Type {
	case MessageReady:
		t.loop.Post(t.ctrl.Initialize)
	case MessageEvent:
		var ev EventData
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			t.log.WithError(err).Warn("malformed event")
			return
		}
		t.loop.Post(func() { t.dispatch(ev) })
	default:
		t.log.WithField("type", msg.Type).Debug("ignoring message")
	}
}

// Redirect sends the browser to path.
func (t *Tab) Redirect(path string) {
	t.send(MessageRedirect, RedirectData{Path: path})
}

// eventInput reports typing. It only syncs field values.
const eventInput = "input"

func (t *Tab) dispatch(ev EventData) {
	for node, value := range ev.Values {
		if el := t.doc.NodeByNumber(node); el != nil {
			el.Value = value
		}
	}

	if ev.Type == eventInput {
		// The browser already shows these values, so they need no render.
		// Later renders carry them instead of what was last pushed.
		t.lastHTML = t.doc.HTML()
		return
	}

	target := t.doc.NodeByNumber(ev.Node)
	if target == nil {
		t.log.WithField("node", ev.Node).Debug("event target is gone")
		return
	}
	target.Dispatch(ev.Type)
}

// flush pushes the document when it changed since the last push.
func (t *Tab) flush() {
	html := t.doc.HTML()
	if html == t.lastHTML {
		return
	}
	t.lastHTML = html
	t.send(MessageRender, RenderData{HTML: html})
}

func (t *Tab) send(typ string, data any) {
	msg, err := NewMessage(typ, data)
	if err != nil {
		t.log.WithError(err).Error("failed to encode message")
		return
	}
	if !t.out.Deliver(msg) {
		t.log.WithField("type", typ).Debug("message not delivered")
	}
}
