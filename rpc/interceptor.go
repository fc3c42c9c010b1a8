package rpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// AppIDKey is the metadata key carrying the calling application's name.
const AppIDKey = "app_id"

// DefaultAppID is sent by clients created with Dial.
const DefaultAppID = "taskdesk"

// AppIDInterceptor tags every outgoing call with appID.
func AppIDInterceptor(appID string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, AppIDKey, appID)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// LoggingInterceptor logs every handled call with its method, caller and
// resulting status code.
func LoggingInterceptor(log *logrus.Entry) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		appID := "unknown"
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(AppIDKey); len(v) > 0 {
				appID = v[0]
			}
		}
		entry := log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			AppIDKey:   appID,
			"code":     status.Code(err).String(),
			"duration": time.Since(start),
		})
		if err != nil {
			entry.WithError(err).Info("call failed")
		} else {
			entry.Debug("call handled")
		}
		return resp, err
	}
}
