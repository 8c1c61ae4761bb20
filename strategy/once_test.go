package strategy

import (
	"context"
	"errors"
	"testing"
)

func TestOnceCell_IgnoreKeepsFirst(t *testing.T) {
	c := NewOnceCell(OnceIgnore)
	first := errors.New("first")
	second := errors.New("second")

	c.Handle(context.Background(), first)
	c.Handle(context.Background(), second)

	if got := c.Err(); got != first {
		t.Errorf("Err() = %v, want %v", got, first)
	}
}

func TestOnceCell_IgnoreTryHandleNeverFails(t *testing.T) {
	c := NewOnceCell(OnceIgnore)
	_ = c.TryHandle(context.Background(), errors.New("first"))

	if err := c.TryHandle(context.Background(), errors.New("second")); err != nil {
		t.Errorf("TryHandle() error = %v, want nil", err)
	}
}

func TestOnceCell_ErrorModeRejectsSecond(t *testing.T) {
	c := NewOnceCell(OnceError)
	first := errors.New("first")
	second := errors.New("second")

	if err := c.TryHandle(context.Background(), first); err != nil {
		t.Fatalf("TryHandle(first) error = %v", err)
	}

	err := c.TryHandle(context.Background(), second)
	var occupied *AlreadyOccupiedError
	if !errors.As(err, &occupied) {
		t.Fatalf("TryHandle(second) error = %v, want *AlreadyOccupiedError", err)
	}
	if occupied.Err != second {
		t.Errorf("rejected error = %v, want %v", occupied.Err, second)
	}
	if !errors.Is(err, ErrOccupied) {
		t.Error("errors.Is(err, ErrOccupied) = false, want true")
	}
	if got := c.Err(); got != first {
		t.Errorf("Err() = %v, want %v", got, first)
	}
}

func TestOnceCell_Take(t *testing.T) {
	c := NewOnceCell(OnceIgnore)
	if c.Occupied() {
		t.Fatal("new cell is occupied")
	}

	testErr := errors.New("x")
	c.Handle(context.Background(), testErr)

	if got := c.Take(); got != testErr {
		t.Errorf("Take() = %v, want %v", got, testErr)
	}
	if c.Occupied() {
		t.Error("cell still occupied after Take")
	}
}
