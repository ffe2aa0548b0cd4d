package correlation

import "net/http"

// Middleware ensures every request carries a correlation id: the inbound
// header value when present, a generated one otherwise. The id is placed on
// the request context and echoed in the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithID(r.Context(), r.Header.Get(Header))
		ctx, id := Ensure(ctx)
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
