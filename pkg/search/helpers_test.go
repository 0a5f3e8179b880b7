package search

import "context"

func ctx() context.Context {
	return context.Background()
}
