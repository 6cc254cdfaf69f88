package grpc

import (
	"context"
	"net"
	"strings"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

func firstMetadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}

// requestMeta collects the client IP and user agent for auditing. The IP
// is the first x-forwarded-for hop, falling back to the peer address.
func requestMeta(ctx context.Context) models.RequestMeta {
	var m models.RequestMeta

	if fwd := firstMetadataValue(ctx, common.ForwardedForHeaderName); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		m.IP = strings.TrimSpace(first)
	}
	if m.IP == "" {
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			host, _, err := net.SplitHostPort(p.Addr.String())
			if err != nil {
				host = p.Addr.String()
			}
			m.IP = host
		}
	}

	m.UserAgent = firstMetadataValue(ctx, common.UserAgentHeaderName)
	return m
}
