package domain

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	kind string
}

func doSomething(ctx context.Context, v *item, req *Request, data url.Values) (any, error) {
	return "I did something", nil
}

func onlyDocument(v *item, req *Request) bool {
	return v.kind == "document"
}

func TestTrigger_NoCondition(t *testing.T) {
	trigger := Trigger[*item]{
		ID:      "some action",
		Title:   "My Action Title",
		Order:   1,
		Handler: doSomething,
	}

	assert.Equal(t, "some action", trigger.ID)
	assert.Nil(t, trigger.Condition)
	assert.True(t, trigger.Allowed(&item{}, nil))

	res, err := trigger.Invoke(context.Background(), &item{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "I did something", res)
}

func TestTrigger_Condition(t *testing.T) {
	trigger := Trigger[*item]{
		ID:        "some action",
		Title:     "My Action Title",
		Order:     1,
		Condition: onlyDocument,
		Handler:   doSomething,
	}

	assert.True(t, trigger.Allowed(&item{kind: "document"}, nil))
	assert.False(t, trigger.Allowed(&item{kind: "folder"}, nil))

	// Invoke does not re-check the condition; the dispatcher does.
	res, err := trigger.Invoke(context.Background(), &item{kind: "folder"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "I did something", res)
}

func TestTrigger_InvokePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	trigger := Trigger[*item]{
		ID: "trigger.fail",
		Handler: func(ctx context.Context, v *item, req *Request, data url.Values) (any, error) {
			return nil, boom
		},
	}

	_, err := trigger.Invoke(context.Background(), &item{}, nil, nil)
	assert.Same(t, boom, err)
}

func TestTrigger_Equal(t *testing.T) {
	base := Trigger[*item]{ID: "trigger.a", Title: "A", Order: 10, Handler: doSomething}

	assert.True(t, base.Equal(base))

	other := base
	other.Title = "B"
	assert.False(t, base.Equal(other))

	withCond := base
	withCond.Condition = onlyDocument
	assert.False(t, base.Equal(withCond))
	assert.True(t, withCond.Equal(withCond))

	otherHandler := base
	otherHandler.Handler = func(ctx context.Context, v *item, req *Request, data url.Values) (any, error) {
		return nil, nil
	}
	assert.False(t, base.Equal(otherHandler))
}

func TestTriggerID(t *testing.T) {
	assert.Equal(t, "trigger.do_something", TriggerID("do_something"))
	assert.Equal(t, "trigger.save_draft", TriggerID("Save Draft"))
	assert.Equal(t, "trigger.go_back", TriggerID(" go-back "))
}
