// Package controller wires a page's UI events to the task service. One
// Controller serves one page: it activates the auth flow on the login page or
// the task flow on the task page, exactly once.
package controller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/CrowderSoup/taskdesk/rpc"
	"github.com/CrowderSoup/taskdesk/session"
	"github.com/sirupsen/logrus"
)

// Scheduler is the page's event loop. Go runs blocking work off the loop and
// posts the returned callback back onto it.
type Scheduler interface {
	Go(work func() func())
	AfterFunc(d time.Duration, fn func()) *time.Timer
}

// Navigator leaves the current page.
type Navigator interface {
	Redirect(path string)
}

// Options tunes paths and timings. Zero values take defaults.
type Options struct {
	AuthPath         string
	TasksPath        string
	FeedbackDuration time.Duration
	RedirectDelay    time.Duration
	// CallTimeout bounds each remote call. Zero means no deadline.
	CallTimeout time.Duration
	// Location is used to display deadlines and parse deadline inputs.
	Location *time.Location
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.AuthPath == "" {
		o.AuthPath = "/index.html"
	}
	if o.TasksPath == "" {
		o.TasksPath = "/tasks.html"
	}
	if o.FeedbackDuration <= 0 {
		o.FeedbackDuration = 2 * time.Second
	}
	if o.RedirectDelay <= 0 {
		o.RedirectDelay = time.Second
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Deps are the collaborators of a Controller.
type Deps struct {
	API       rpc.Service
	Session   *session.Store
	Document  *dom.Document
	Loop      Scheduler
	Navigator Navigator
	Log       *logrus.Entry
}

const (
	stateUninitialized int32 = iota
	stateInitialized
)

type Controller struct {
	api      rpc.Service
	session  *session.Store
	doc      *dom.Document
	loop     Scheduler
	nav      Navigator
	log      *logrus.Entry
	opts     Options
	feedback *Feedback

	state         atomic.Int32
	tasksAttached bool
}

func New(d Deps, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		api:      d.API,
		session:  d.Session,
		doc:      d.Document,
		loop:     d.Loop,
		nav:      d.Navigator,
		log:      d.Log,
		opts:     opts,
		feedback: NewFeedback(d.Loop, opts.FeedbackDuration),
	}
}

// Initialize activates the binder matching the page. Only the first call does
// anything; later calls are silent.
func (c *Controller) Initialize() {
	if !c.state.CompareAndSwap(stateUninitialized, stateInitialized) {
		return
	}
	c.log.Info("initializing page controller")

	switch {
	case c.doc.GetElementByID("loginForm") != nil:
		c.initAuth()
	case c.doc.GetElementByID("taskList") != nil:
		c.initTasks()
	default:
		c.log.WithField("page", c.doc.Page).Debug("no controller for page")
	}
}

// call runs fn off the loop and hands its result to done on the loop. There
// is no retry and no cancellation beyond the optional call timeout.
func call[T any](c *Controller, fn func(ctx context.Context) (T, error), done func(T, error)) {
	timeout := c.opts.CallTimeout
	c.loop.Go(func() func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := fn(ctx)
		return func() { done(resp, err) }
	})
}

// callErr is call for operations without a response body.
func callErr(c *Controller, fn func(ctx context.Context) error, done func(error)) {
	call(c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, func(_ struct{}, err error) {
		done(err)
	})
}

// rpcError logs a failed call and returns the message to show.
func (c *Controller) rpcError(op string, err error) string {
	e := rpc.FromError(err)
	c.log.WithFields(logrus.Fields{
		"operation": op,
		"message":   e.Message,
		"code":      e.Code.String(),
		"details":   orDefault(e.Details, "No details"),
	}).Error("rpc call failed")
	return orDefault(e.Message, msgUnknownError)
}

func (c *Controller) value(id string) string {
	if el := c.doc.GetElementByID(id); el != nil {
		return el.Value
	}
	return ""
}
