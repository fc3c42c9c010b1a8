package controller

import (
	"context"
	"strings"

	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/CrowderSoup/taskdesk/rpc"
)

// Credentials are read from a form for one request and never stored.
type Credentials struct {
	Login    string
	Password string
}

// authForm parameterizes the shared submit routine of the login and
// registration forms.
type authForm[Req any] struct {
	op            string
	form          *dom.Element
	loginField    string
	passwordField string
	build         func(Credentials) *Req
	send          func(ctx context.Context, req *Req) (int64, error)
	successMsg    string
	errors        map[string]string
	// startSession persists the returned id and leaves for the task page.
	startSession bool
}

func (c *Controller) initAuth() {
	loginForm := c.doc.GetElementByID("loginForm")
	registerForm := c.doc.GetElementByID("registerForm")
	message := c.doc.GetElementByID("message")
	if loginForm == nil || registerForm == nil || message == nil {
		c.log.Warn("auth page is not fully loaded")
		return
	}

	bindAuthForm(c, message, authForm[rpc.LogInRequest]{
		op:            "controller.logIn",
		form:          loginForm,
		loginField:    "login",
		passwordField: "password",
		build: func(cr Credentials) *rpc.LogInRequest {
			return &rpc.LogInRequest{Login: cr.Login, Password: cr.Password}
		},
		send: func(ctx context.Context, req *rpc.LogInRequest) (int64, error) {
			resp, err := c.api.LogIn(ctx, req)
			if err != nil {
				return 0, err
			}
			return resp.ID, nil
		},
		successMsg:   msgLoginSuccess,
		errors:       loginErrors,
		startSession: true,
	})

	bindAuthForm(c, message, authForm[rpc.RegisterRequest]{
		op:            "controller.registerUser",
		form:          registerForm,
		loginField:    "regLogin",
		passwordField: "regPassword",
		build: func(cr Credentials) *rpc.RegisterRequest {
			return &rpc.RegisterRequest{Login: cr.Login, Password: cr.Password}
		},
		send: func(ctx context.Context, req *rpc.RegisterRequest) (int64, error) {
			resp, err := c.api.RegisterUser(ctx, req)
			if err != nil {
				return 0, err
			}
			return resp.ID, nil
		},
		successMsg: msgRegisterSuccess,
		errors:     registerErrors,
	})
}

func bindAuthForm[Req any](c *Controller, message *dom.Element, f authForm[Req]) {
	f.form.BindOnce("submit", func(e *dom.Event) {
		e.PreventDefault()

		loginInput := c.doc.GetElementByID(f.loginField)
		passwordInput := c.doc.GetElementByID(f.passwordField)
		if loginInput == nil || passwordInput == nil {
			c.feedback.Show(message, msgFieldsMissing, ColorError)
			c.log.WithField("operation", f.op).Error("credential fields not found")
			return
		}

		cr := Credentials{
			Login:    strings.TrimSpace(loginInput.Value),
			Password: strings.TrimSpace(passwordInput.Value),
		}
		switch {
		case cr.Login == "":
			c.feedback.Show(message, msgEnterLogin, ColorError)
			return
		case cr.Password == "":
			c.feedback.Show(message, msgEnterPassword, ColorError)
			return
		}

		req := f.build(cr)
		call(c, func(ctx context.Context) (int64, error) {
			return f.send(ctx, req)
		}, func(id int64, err error) {
			if err != nil {
				c.feedback.Show(message, translate(f.errors, c.rpcError(f.op, err)), ColorError)
				return
			}
			c.log.WithField("operation", f.op).WithField("id", id).Info("credentials accepted")

			if f.startSession {
				c.session.Set(id)
			}
			c.feedback.Show(message, f.successMsg, ColorSuccess)
			f.form.Reset()
			if f.startSession {
				c.loop.AfterFunc(c.opts.RedirectDelay, func() {
					c.nav.Redirect(c.opts.TasksPath)
				})
			}
		})
	})
}
