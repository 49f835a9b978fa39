package web

import (
	"net/http"

	"github.com/JonMunkholm/buyerleads/internal/core"
)

// requestMetadata copies the client address and User-Agent into the
// request context so service spans can record them. RemoteAddr has already
// been resolved by TrustedRealIP.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithIPAddress(r.Context(), r.RemoteAddr)
		ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
