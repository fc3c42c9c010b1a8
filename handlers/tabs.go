package handlers

import (
	"context"
	"net/http"

	"github.com/CrowderSoup/taskdesk/controller"
	"github.com/CrowderSoup/taskdesk/dom"
	"github.com/CrowderSoup/taskdesk/rpc"
	"github.com/CrowderSoup/taskdesk/services"
	"github.com/CrowderSoup/taskdesk/session"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// StorageOpener returns the durable storage of one partition.
type StorageOpener func(partition string) session.Storage

// TabHandler connects browser tabs to server-side pages.
type TabHandler struct {
	hub      *services.Hub
	api      rpc.Service
	storage  StorageOpener
	options  controller.Options
	log      *logrus.Entry
	upgrader websocket.Upgrader
}

func NewTabHandler(hub *services.Hub, api rpc.Service, storage StorageOpener, options controller.Options, log *logrus.Entry) *TabHandler {
	return &TabHandler{
		hub:     hub,
		api:     api,
		storage: storage,
		options: options,
		log:     log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS is enforced by the router
			},
		},
	}
}

// HandleWebSocket upgrades the HTTP connection and runs one tab until the
// browser goes away.
func (h *TabHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.TabHandler.HandleWebSocket"
	log := h.log.WithField("operation", op)

	partition, ok := PartitionFromContext(r.Context())
	if !ok {
		http.Error(w, "storage partition missing", http.StatusUnauthorized)
		return
	}

	page := r.URL.Query().Get("page")
	if dom.NewPage(page) == nil {
		http.Error(w, "unknown page", http.StatusBadRequest)
		return
	}

	// The upgrade response is written by hand, so a freshly issued storage
	// cookie has to be passed along.
	var header http.Header
	if cookies := w.Header().Values("Set-Cookie"); len(cookies) > 0 {
		header = http.Header{"Set-Cookie": cookies}
	}
	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.WithError(err).Warn("error upgrading to websocket")
		return
	}

	tabLog := h.log.WithField("partition", partition)
	client := &services.Client{
		Hub:       h.hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		Partition: partition,
		Log:       tabLog,
	}
	tab, err := services.NewTab(services.TabConfig{
		Page:    page,
		API:     h.api,
		Storage: h.storage(partition),
		Options: h.options,
		Log:     tabLog,
	}, client)
	if err != nil {
		log.WithError(err).Error("failed to open tab")
		conn.Close()
		return
	}
	client.Handler = tab

	ctx, cancel := context.WithCancel(context.Background())
	go tab.Run(ctx)

	h.hub.Register(client)
	log.WithField("page", page).Debug("tab connected")

	go client.WritePump()
	go func() {
		client.ReadPump()
		cancel()
	}()
}
