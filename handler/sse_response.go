package handler

import "net/http"

// SSEHandler runs for the lifetime of a Server-Sent Events connection. The
// connection closes when it returns or the client disconnects.
//
//	handler.SSE(func(stream handler.StreamContext) error {
//		sub := session.Subscribe(stream)
//		defer sub.Close()
//		for msg := range sub.Receive(stream) {
//			if err := stream.SendComponent(views.Status(msg.Data)); err != nil {
//				return err
//			}
//		}
//		return nil
//	})
type SSEHandler func(ctx StreamContext) error

type sseResponse struct {
	handler SSEHandler
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !IsDataStar(r) {
		return NewHTTPError(http.StatusBadRequest, "SSE endpoint requires DataStar connection")
	}

	base := NewContext(w, r)
	sse := base.SSE()
	if sse == nil {
		return ErrSSENotInitialized
	}
	return s.handler(&streamContext{Context: base, sse: sse})
}

// SSE creates a streaming response that runs handler.
func SSE(handler SSEHandler) Response {
	return sseResponse{handler: handler}
}
