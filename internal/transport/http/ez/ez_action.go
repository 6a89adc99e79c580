// Package ez registers JSON endpoints as typed actions: bind the input,
// run the handler, map the error.
package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	resp "sweet-shop/internal/transport/http/response"
)

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param itself
)

// AErr is an error that already knows its HTTP status.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: http.StatusBadRequest, Msg: msg} }

// Action describes one endpoint. I is the bound input, O the reply body.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int               // success status, 200 when zero
	Guards  []gin.HandlerFunc // run before the handler, e.g. AdminOnly
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](g *gin.RouterGroup, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			Fail(c, bindErr)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, err)
			return
		}
		c.JSON(status, out)
	}

	handlers := append(append([]gin.HandlerFunc{}, a.Guards...), h)
	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		g.GET(a.Path, handlers...)
	case http.MethodPut:
		g.PUT(a.Path, handlers...)
	case http.MethodDelete:
		g.DELETE(a.Path, handlers...)
	default:
		g.POST(a.Path, handlers...)
	}
}

// Fail writes err as a JSON error reply. Unexpected errors are attached to
// the context for the access log and hidden from the client.
func Fail(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		c.AbortWithStatusJSON(ae.Code, resp.Error(ae.Code, ae.Msg))
		return
	}
	code, body, unexpected := resp.FromError(err)
	if unexpected {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, body)
}
