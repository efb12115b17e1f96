package storage

import (
	"context"
	"fmt"
	"time"
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	return ctx.Err()
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", name)
	}
	return nil
}

func validateDate(date time.Time, name string) error {
	if date.IsZero() {
		return fmt.Errorf("%s cannot be zero", name)
	}
	return nil
}
