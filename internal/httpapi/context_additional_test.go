package httpapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestJoinContexts_CancelsWhenEitherDone(t *testing.T) {
	a, ac := context.WithCancel(context.Background())
	b, bc := context.WithCancel(context.Background())
	defer bc()
	j, cancelJ := joinContexts(a, b)
	defer cancelJ()
	ac()
	select {
	case <-j.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("joined context did not cancel when first parent canceled")
	}
}

func TestRequestContext_NoTimeoutHasNoDeadline(t *testing.T) {
	SetBaseContext(nil)
	ctx, cancel := requestContext(httptest.NewRequest("GET", "/providers", nil))
	defer cancel()
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("unexpected deadline without a request timeout")
	}
}

func TestRequestContext_FollowsBaseContext(t *testing.T) {
	base, cancelBase := context.WithCancel(context.Background())
	SetBaseContext(base)
	defer SetBaseContext(nil)

	r := httptest.NewRequest("POST", "/answer", nil)
	ctx, cancel := requestContext(r)
	defer cancel()
	if clientGone(r) {
		t.Fatal("client reported gone before shutdown")
	}
	cancelBase()
	select {
	case <-ctx.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("request context survived base cancellation")
	}
	if !clientGone(r) {
		t.Fatal("clientGone false after base cancellation")
	}
}
