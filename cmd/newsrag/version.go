package main

import (
	"context"
	"fmt"

	"newsrag"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(newsrag.Version)
	return nil
}
