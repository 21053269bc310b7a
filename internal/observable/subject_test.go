package observable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject_SubscribeReceivesCurrentValue(t *testing.T) {
	s := New(3)

	var got []int
	s.Subscribe(func(v int) { got = append(got, v) })

	assert.Equal(t, []int{3}, got)
}

func TestSubject_SetNotifiesInOrder(t *testing.T) {
	s := New("")

	var order []string
	s.Subscribe(func(v string) { order = append(order, "a:"+v) })
	s.Subscribe(func(v string) { order = append(order, "b:"+v) })
	order = nil

	s.Set("x")

	assert.Equal(t, []string{"a:x", "b:x"}, order)
	assert.Equal(t, "x", s.Value())
}

func TestSubject_Unsubscribe(t *testing.T) {
	s := New(0)

	calls := 0
	unsubscribe := s.Subscribe(func(int) { calls++ })
	assert.Equal(t, 1, s.Len())

	unsubscribe()
	s.Set(1)

	assert.Equal(t, 1, calls, "only the initial call should have happened")
	assert.Equal(t, 0, s.Len())
}

func TestSubject_SubscriberMaySetAgain(t *testing.T) {
	s := New(0)

	s.Subscribe(func(v int) {
		if v == 1 {
			s.Set(2)
		}
	})
	s.Set(1)

	assert.Equal(t, 2, s.Value())
}
