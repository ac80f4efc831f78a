package orderbook

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"campuseats/internal/model"
)

const orderNumberSpace = 10000

var ErrOrderNumbersExhausted = errors.New("no free order numbers")

func formatOrderNumber(n int) string {
	return fmt.Sprintf("%04d", n)
}

// NextOrderNumber draws a random 4-digit code that no open order is using,
// probing upwards from the random start. Completed orders free their number.
func (b *Book) NextOrderNumber(rng *rand.Rand) (string, error) {
	used := make(map[string]struct{}, len(b.orders))
	for _, o := range b.orders {
		if o.Status == model.StatusCompleted {
			continue
		}
		used[o.OrderNumber] = struct{}{}
	}
	if len(used) >= orderNumberSpace {
		return "", ErrOrderNumbersExhausted
	}

	start := rng.IntN(orderNumberSpace)
	for i := 0; i < orderNumberSpace; i++ {
		n := formatOrderNumber((start + i) % orderNumberSpace)
		if _, taken := used[n]; !taken {
			return n, nil
		}
	}
	return "", ErrOrderNumbersExhausted
}
