package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/CrowderSoup/taskdesk/services"
	"github.com/sirupsen/logrus"
)

// StorageCookie carries the signed storage partition of a browser.
const StorageCookie = "taskdesk_storage"

type contextKey string

const partitionContextKey contextKey = "partition"

// PartitionFromContext returns the storage partition attached by
// StorageMiddleware.
func PartitionFromContext(ctx context.Context) (string, bool) {
	partition, ok := ctx.Value(partitionContextKey).(string)
	return partition, ok && partition != ""
}

type StorageMiddleware struct {
	keys *services.StorageKeys
	ttl  time.Duration
	log  *logrus.Entry
}

func NewStorageMiddleware(keys *services.StorageKeys, ttl time.Duration, log *logrus.Entry) *StorageMiddleware {
	return &StorageMiddleware{
		keys: keys,
		ttl:  ttl,
		log:  log,
	}
}

// Storage attaches the browser's partition to the request. A missing or
// invalid cookie gets a fresh partition and a new cookie.
func (m *StorageMiddleware) Storage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.StorageMiddleware.Storage"

		var partition string
		if cookie, err := r.Cookie(StorageCookie); err == nil {
			partition, err = m.keys.Verify(cookie.Value)
			if err != nil {
				m.log.WithField("operation", op).WithError(err).Debug("discarding storage cookie")
			}
		}

		if partition == "" {
			token, issued, err := m.keys.Issue()
			if err != nil {
				m.log.WithField("operation", op).WithError(err).Error("failed to issue storage token")
				http.Error(w, "Server error", http.StatusInternalServerError)
				return
			}
			partition = issued
			http.SetCookie(w, &http.Cookie{
				Name:     StorageCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(m.ttl.Seconds()),
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), partitionContextKey, partition)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
