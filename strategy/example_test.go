package strategy_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonwraymond/finalize/strategy"
)

func ExampleChain() {
	primary := strategy.FallibleFunc(func(ctx context.Context, err error) error {
		return fmt.Errorf("primary could not handle %q", err)
	})
	fallback := strategy.HandlerFunc(func(ctx context.Context, err error) {
		fmt.Println("fallback:", err)
	})

	strategy.NewChain(primary, fallback).Handle(context.Background(), errors.New("close failed"))
	// Output:
	// fallback: primary could not handle "close failed"
}

func ExampleNewWrite() {
	w := strategy.NewWrite(os.Stdout, strategy.WithPrelude("error: "))
	_ = w.TryHandle(context.Background(), errors.New("flush failed"))
	// Output:
	// error: flush failed
}

func ExampleOnceCell() {
	cell := strategy.NewOnceCell(strategy.OnceIgnore)
	cell.Handle(context.Background(), errors.New("first"))
	cell.Handle(context.Background(), errors.New("second"))

	fmt.Println(cell.Err())
	// Output:
	// first
}
