package observe_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/finalize/observe"
	"github.com/jonwraymond/finalize/strategy"
)

func ExampleMiddleware_Wrap() {
	obs, err := observe.NewObserver(context.Background(), observe.Config{ServiceName: "example"})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer obs.Shutdown(context.Background())

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	cell := strategy.NewOnceCell(strategy.OnceIgnore)
	h := mw.Wrap(cell, observe.HandlerMeta{Name: "cell", Role: "primary"})
	_ = h.TryHandle(context.Background(), errors.New("close failed"))

	fmt.Println(cell.Err())
	// Output:
	// close failed
}

func ExampleHandlerMeta_SpanName() {
	fmt.Println(observe.HandlerMeta{Name: "stderr", Role: "primary"}.SpanName())
	// Output:
	// finalize.handle.primary.stderr
}
