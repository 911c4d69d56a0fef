package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"dermscan/internal/inference"
)

func TestPredict_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"decode", inference.ErrDecode("unsupported image", nil), http.StatusBadRequest},
		{"uninitialized", inference.ErrUninitialized(), http.StatusConflict},
		{"dependency", inference.ErrDependencyUnavailable("no runtime"), http.StatusServiceUnavailable},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := postJSON(NewMux(&mockService{predictErr: c.err}), "/predict", `{"image":"data:image/png;base64,AAAA"}`)
			if rec.Code != c.want {
				t.Fatalf("status=%d want %d", rec.Code, c.want)
			}
		})
	}
}

func TestInitialize_ErrorMapping(t *testing.T) {
	rec := postJSON(NewMux(&mockService{initErr: errors.New("boom")}), "/initialize", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
}
