package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggers_Empty(t *testing.T) {
	table := NewTriggers[*item]()

	assert.Equal(t, 0, table.Len())
	assert.Empty(t, table.IDs())
	_, ok := table.Get("trigger.missing")
	assert.False(t, ok)

	var nilTable *Triggers[*item]
	assert.Equal(t, 0, nilTable.Len())
	assert.Empty(t, nilTable.All())
}

func TestTriggers_OrderAndReplace(t *testing.T) {
	table := NewTriggers(
		Trigger[*item]{ID: "trigger.a", Title: "A", Handler: doSomething},
		Trigger[*item]{ID: "trigger.b", Title: "B", Handler: doSomething},
		Trigger[*item]{ID: "trigger.a", Title: "A2", Handler: doSomething},
	)

	assert.Equal(t, []string{"trigger.a", "trigger.b"}, table.IDs())
	got, ok := table.Get("trigger.a")
	assert.True(t, ok)
	assert.Equal(t, "A2", got.Title)
}

func TestTriggers_AllIsACopy(t *testing.T) {
	table := NewTriggers(Trigger[*item]{ID: "trigger.a", Title: "A", Handler: doSomething})

	all := table.All()
	all[0].Title = "mutated"

	got, _ := table.Get("trigger.a")
	assert.Equal(t, "A", got.Title)
}

func TestTriggers_Filtered(t *testing.T) {
	table := NewTriggers(
		Trigger[*item]{ID: "trigger.always", Handler: doSomething},
		Trigger[*item]{ID: "trigger.doc", Condition: onlyDocument, Handler: doSomething},
		Trigger[*item]{ID: "trigger.last", Handler: doSomething},
	)

	collect := func(v *item) []string {
		var ids []string
		for id := range table.Filtered(v, nil) {
			ids = append(ids, id)
		}
		return ids
	}

	assert.Equal(t, []string{"trigger.always", "trigger.last"}, collect(&item{kind: "folder"}))
	assert.Equal(t, []string{"trigger.always", "trigger.doc", "trigger.last"}, collect(&item{kind: "document"}))
}

func TestTriggers_FilteredReevaluates(t *testing.T) {
	v := &item{kind: "folder"}
	table := NewTriggers(Trigger[*item]{ID: "trigger.doc", Condition: onlyDocument, Handler: doSomething})
	seq := table.Filtered(v, nil)

	count := 0
	for range seq {
		count++
	}
	assert.Equal(t, 0, count)

	v.kind = "document"
	for range seq {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestTriggers_FilteredStopsEarly(t *testing.T) {
	table := NewTriggers(
		Trigger[*item]{ID: "trigger.a", Handler: doSomething},
		Trigger[*item]{ID: "trigger.b", Handler: doSomething},
	)

	var seen []string
	for id := range table.Filtered(&item{}, nil) {
		seen = append(seen, id)
		break
	}
	assert.Equal(t, []string{"trigger.a"}, seen)
}
