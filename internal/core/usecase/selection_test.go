package usecase

import (
	"context"
	"property-explorer/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_SinglePointer(t *testing.T) {
	notifier := &fakeNotifier{}
	sel := NewSelection(context.Background(), "s1", notifier)

	_, ok := sel.Selected()
	assert.False(t, ok)

	sel.Select(10, domain.OriginList)
	sel.Select(20, domain.OriginMap)

	id, ok := sel.Selected()
	require.True(t, ok)
	assert.Equal(t, int64(20), id)
	assert.Equal(t, domain.OriginMap, sel.Pointer().Origin)

	events := notifier.ofType(domain.EventSelection)
	require.Len(t, events, 2)
	assert.Equal(t, domain.ActionFocusMap, events[0].Data.(domain.SelectionEvent).Action)
	assert.Equal(t, domain.ActionScrollList, events[1].Data.(domain.SelectionEvent).Action)

	sel.Clear()
	sel.Clear()
	_, ok = sel.Selected()
	assert.False(t, ok)
	assert.Len(t, notifier.ofType(domain.EventSelection), 3, "clearing an empty selection emits nothing")
}

func TestSelection_PointerIsCopy(t *testing.T) {
	sel := NewSelection(context.Background(), "s1", nil)
	sel.Select(5, domain.OriginList)

	p := sel.Pointer()
	*p.PropertyID = 99

	id, _ := sel.Selected()
	assert.Equal(t, int64(5), id)
}
