//go:build ch347

package main

import (
	"fmt"

	"github.com/mklimuk/als"
	"github.com/mklimuk/als/adapter/ch347hid"
)

func init() {
	openCH347 = func() (als.RegisterBus, func() error, error) {
		b, err := ch347hid.Open()
		if err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		return b, b.Close, nil
	}
}
