package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scanstation/handler"
)

type mockResponse struct {
	status    int
	body      string
	renderErr error
}

func (m mockResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	if m.renderErr != nil {
		return m.renderErr
	}
	w.WriteHeader(m.status)
	_, err := w.Write([]byte(m.body))
	return err
}

type mockComponent struct {
	content string
}

func (m mockComponent) Render(_ context.Context, w io.Writer) error {
	_, err := w.Write([]byte(m.content))
	return err
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("renders response", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[handler.Context, struct{}](func(ctx handler.Context, _ struct{}) handler.Response {
			assert.NotNil(t, ctx.Request())
			return mockResponse{status: http.StatusOK, body: "ok"}
		})

		rec := httptest.NewRecorder()
		handler.Wrap(h)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})

	t.Run("render error uses default handler", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[handler.Context, struct{}](func(handler.Context, struct{}) handler.Response {
			return mockResponse{renderErr: errors.New("render failed")}
		})

		rec := httptest.NewRecorder()
		handler.Wrap(h)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "render failed")
	})

	t.Run("http error keeps status", func(t *testing.T) {
		t.Parallel()
		h := handler.HandlerFunc[handler.Context, struct{}](func(handler.Context, struct{}) handler.Response {
			return mockResponse{renderErr: handler.ErrConflict}
		})

		rec := httptest.NewRecorder()
		handler.Wrap(h)(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "conflict")
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		var got error
		h := handler.HandlerFunc[handler.Context, struct{}](func(handler.Context, struct{}) handler.Response {
			return nil
		})
		wrapped := handler.Wrap(h, handler.WithErrorHandler[handler.Context, struct{}](func(_ handler.Context, err error) {
			got = err
		}))

		wrapped(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, got, handler.ErrNilResponse)
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()
		var order []string
		mark := func(name string) handler.Decorator[handler.Context, struct{}] {
			return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
				return func(ctx handler.Context, req struct{}) handler.Response {
					order = append(order, name)
					return next(ctx, req)
				}
			}
		}
		h := handler.HandlerFunc[handler.Context, struct{}](func(handler.Context, struct{}) handler.Response {
			order = append(order, "handler")
			return mockResponse{status: http.StatusAccepted}
		})

		rec := httptest.NewRecorder()
		handler.Wrap(h, handler.WithDecorators(mark("outer"), mark("inner")))(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, []string{"outer", "inner", "handler"}, order)
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.WithValue(context.Background(), ctxKey{}, "v"), time.Minute)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	c := handler.NewContext(httptest.NewRecorder(), req)

	assert.Equal(t, "v", c.Value(ctxKey{}))
	_, ok := c.Deadline()
	assert.True(t, ok)
	assert.Nil(t, c.SSE(), "plain requests have no event stream")

	cancel()
	<-c.Done()
	require.ErrorIs(t, c.Err(), context.Canceled)
}

type ctxKey struct{}

func TestIsDataStar(t *testing.T) {
	t.Parallel()

	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, handler.IsDataStar(plain))

	accept := httptest.NewRequest(http.MethodGet, "/", nil)
	accept.Header.Set("Accept", "text/event-stream")
	assert.True(t, handler.IsDataStar(accept))

	query := httptest.NewRequest(http.MethodGet, "/?datastar=%7B%7D", nil)
	assert.True(t, handler.IsDataStar(query))
}
