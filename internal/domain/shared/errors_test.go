package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "Invoice not found")
	wrapped := fmt.Errorf("load invoice: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrForbidden))
	assert.Equal(t, "Invoice not found", err.Error())

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestFilter_Offset(t *testing.T) {
	assert.Equal(t, 10, Filter{Page: 2, PageSize: 10}.Offset())
	assert.Equal(t, 0, Filter{Page: 0, PageSize: 10}.Offset())
	assert.Equal(t, 0, Filter{Page: 1, PageSize: 10}.Offset())
}

type ledger struct {
	BaseAggregateRoot
}

func TestCollectEvents_DrainsInOrder(t *testing.T) {
	a := &ledger{NewBaseAggregateRoot()}
	b := &ledger{NewBaseAggregateRoot()}
	first := NewBaseDomainEvent("invoice.created", "Invoice", a.ID)
	second := NewBaseDomainEvent("invoice.paid", "Invoice", b.ID)
	a.AddDomainEvent(&first)
	b.AddDomainEvent(&second)

	events := CollectEvents(a, b)
	assert.Equal(t, []DomainEvent{&first, &second}, events)
	assert.Empty(t, a.GetDomainEvents())
	assert.Empty(t, CollectEvents(a, b))
}
