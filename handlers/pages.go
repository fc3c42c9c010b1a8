package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/sirupsen/logrus"
)

// shell is the whole client: it opens the tab socket, patches in what the
// server renders without losing typed input or focus, and reports typing,
// submits and button clicks with the current field values.
var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
<style>.modal.show{display:block;background:rgba(0,0,0,.4);padding:10vh 1rem}.modal.show>*{background:#fff;max-width:32rem;margin:0 auto;padding:.5rem 1rem}</style>
</head>
<body data-page="{{.Page}}">
<div id="app" class="py-4"></div>
<script>
(function () {
  const app = document.getElementById("app");
  const scheme = location.protocol === "https:" ? "wss" : "ws";
  const ws = new WebSocket(scheme + "://" + location.host + "/api/ws?page=" + document.body.dataset.page);
  const send = (type, data) => { if (ws.readyState === 1) ws.send(JSON.stringify({type: type, data: data})); };
  const fields = "input[data-node], textarea[data-node], select[data-node]";
  const isSecret = (el) => el.tagName === "INPUT" && el.type === "password";
  // synced holds the value the server last saw for each field. A render that
  // carries the same value keeps what the user has typed since.
  let synced = {};
  const report = (node, type) => {
    const v = {};
    app.querySelectorAll(fields).forEach((el) => {
      v[el.dataset.node] = el.value;
      if (!isSecret(el)) synced[el.dataset.node] = el.value;
    });
    send("event", {node: Number(node), type: type, values: v});
  };
  const renderedValue = (el) => {
    if (el.tagName === "TEXTAREA") return el.textContent;
    if (el.tagName === "SELECT") return el.dataset.value || "";
    return el.getAttribute("value") || "";
  };
  const paint = (html) => {
    const typed = {};
    app.querySelectorAll(fields).forEach((el) => { typed[el.dataset.node] = el.value; });
    const active = app.contains(document.activeElement) ? document.activeElement : null;
    const focus = active && active.dataset.node;
    let start = null, end = null;
    try { if (active) { start = active.selectionStart; end = active.selectionEnd; } } catch (_) {}

    app.innerHTML = html;
    const next = {};
    app.querySelectorAll(fields).forEach((el) => {
      const node = el.dataset.node;
      if (isSecret(el)) {
        // The server never sends secrets back; it only says whether one is set.
        if (el.dataset.filled && node in typed) el.value = typed[node];
        return;
      }
      const value = renderedValue(el);
      next[node] = value;
      if (el.tagName === "SELECT") el.value = value;
      if (node in typed && synced[node] === value) el.value = typed[node];
    });
    synced = next;

    if (focus) {
      const el = app.querySelector('[data-node="' + focus + '"]');
      if (el) {
        el.focus();
        try { if (start !== null) el.setSelectionRange(start, end); } catch (_) {}
      }
    }
  };
  ws.onopen = () => send("ready");
  ws.onmessage = (e) => {
    const m = JSON.parse(e.data);
    if (m.type === "render") {
      paint(m.data.html);
    } else if (m.type === "redirect") {
      location.href = m.data.path;
    }
  };
  app.addEventListener("input", (e) => {
    const el = e.target.closest("[data-node]");
    if (el) report(el.dataset.node, "input");
  });
  app.addEventListener("submit", (e) => {
    e.preventDefault();
    report(e.target.dataset.node, "submit");
  });
  app.addEventListener("click", (e) => {
    const el = e.target.closest("button[data-node]");
    if (!el || el.type === "submit") return;
    report(el.dataset.node, "click");
  });
  setInterval(() => send("ping"), 30000);
})();
</script>
</body>
</html>
`))

type shellData struct {
	Title string
	Page  string
}

// PageHandler serves the browser shells of the auth and task pages.
type PageHandler struct {
	log *logrus.Entry
}

func NewPageHandler(log *logrus.Entry) *PageHandler {
	return &PageHandler{log: log}
}

func (h *PageHandler) Auth(w http.ResponseWriter, r *http.Request) {
	h.serve(w, shellData{Title: "Sign in", Page: dom.PageAuth})
}

func (h *PageHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	h.serve(w, shellData{Title: "Tasks", Page: dom.PageTasks})
}

func (h *PageHandler) serve(w http.ResponseWriter, data shellData) {
	const op = "handlers.PageHandler.serve"

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := shell.Execute(w, data); err != nil {
		h.log.WithField("operation", op).WithError(err).Error("failed to render shell")
	}
}

// TabCounter reports how many tabs are connected.
type TabCounter interface {
	Count() int
}

// Health reports liveness and the number of open tabs.
func Health(tabs TabCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"tabs":   tabs.Count(),
		})
	}
}
